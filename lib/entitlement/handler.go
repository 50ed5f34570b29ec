package entitlementhandler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	employeestore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee/store"
	entitlementstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/lock"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

// Баланс отпускных дней. Все изменения по одному сотруднику сериализуются
// блокировкой по ключу, иначе проверка баланса теряет смысл: две
// одновременные резервации не должны пройти, если помещается только одна.
type Provider interface {
	Reserve(employeeID, requestID string, days int) (reservationID string, err error)
	Commit(reservationID string) error
	Release(reservationID string) error
	// Transition переводит резервацию в указанное состояние с корректировкой
	// баланса; используется при корректировке решений и отмене согласованных
	// заявок.
	Transition(reservationID string, to models.ReservationState) error
	Renew(employeeID string) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:         entitlementstore.NewInstance(db.DB),
		employeeStore: employeestore.NewInstance(db.DB),
	}
}

type impl struct {
	store         entitlementstore.Provider
	employeeStore employeestore.Provider
}

const lockWait = 5 * time.Second

func ledgerLockKey(employeeID string) string {
	return "entitlement:" + employeeID
}

func (i impl) GetLogger(employeeID string) *log.Entry {
	return log.WithField("employee_id", employeeID)
}

func (i impl) Reserve(employeeID, requestID string, days int) (reservationID string, err error) {
	if days <= 0 {
		return "", errors.New("количество дней должно быть больше нуля")
	}
	ok, err := lock.WithDelay(context.Background(), ledgerLockKey(employeeID), lockWait, func() error {
		ledger, lErr := i.store.GetByEmployee(employeeID)
		if lErr != nil {
			return lErr
		}
		if ledger == nil {
			return errs.ErrNoLedger
		}
		if ledger.AvailableDays() < days {
			return errs.ErrInsufficientBalance
		}
		lErr = i.store.Update(employeeID, map[string]interface{}{
			"PendingDays": ledger.PendingDays + days,
		})
		if lErr != nil {
			return lErr
		}
		reservationID, lErr = i.store.CreateReservation(dbmodels.Reservation{
			EmployeeID: employeeID,
			RequestID:  requestID,
			Days:       days,
			State:      models.ReservationHeld,
		})
		return lErr
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("не удалось получить блокировку баланса сотрудника")
	}
	i.GetLogger(employeeID).
		WithField("reservation_id", reservationID).
		WithField("days", days).
		Info("дни отпуска зарезервированы")
	return reservationID, nil
}

func (i impl) Commit(reservationID string) error {
	return i.Transition(reservationID, models.ReservationCommitted)
}

func (i impl) Release(reservationID string) error {
	return i.Transition(reservationID, models.ReservationReleased)
}

func (i impl) Transition(reservationID string, to models.ReservationState) error {
	res, err := i.store.GetReservation(reservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return errors.Errorf("резервация %v не найдена", reservationID)
	}
	ok, err := lock.WithDelay(context.Background(), ledgerLockKey(res.EmployeeID), lockWait, func() error {
		// состояние перечитывается под блокировкой
		res, err = i.store.GetReservation(reservationID)
		if err != nil {
			return err
		}
		if res.State == to {
			return nil
		}
		ledger, lErr := i.store.GetByEmployee(res.EmployeeID)
		if lErr != nil {
			return lErr
		}
		if ledger == nil {
			return errs.ErrNoLedger
		}
		updMap, lErr := transitionLedger(*ledger, res.State, to, res.Days)
		if lErr != nil {
			return lErr
		}
		if lErr = i.store.Update(res.EmployeeID, updMap); lErr != nil {
			return lErr
		}
		return i.store.UpdateReservation(reservationID, map[string]interface{}{
			"State": to,
		})
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("не удалось получить блокировку баланса сотрудника")
	}
	i.GetLogger(res.EmployeeID).
		WithField("reservation_id", reservationID).
		WithField("state", to).
		Info("резервация переведена в новое состояние")
	return nil
}

// transitionLedger возвращает изменения баланса для перехода резервации
// из состояния from в to. Переход released->held/committed повторно
// проверяет доступность дней.
func transitionLedger(ledger dbmodels.EntitlementLedger, from, to models.ReservationState, days int) (map[string]interface{}, error) {
	pending := ledger.PendingDays
	consumed := ledger.ConsumedDays
	switch from {
	case models.ReservationHeld:
		pending -= days
	case models.ReservationCommitted:
		consumed -= days
	case models.ReservationReleased:
		if ledger.EntitledDays-consumed-pending < days {
			return nil, errs.ErrInsufficientBalance
		}
	}
	switch to {
	case models.ReservationHeld:
		pending += days
	case models.ReservationCommitted:
		consumed += days
	}
	if pending < 0 || consumed < 0 {
		return nil, errors.Errorf("баланс ушёл в минус при переходе %v->%v", from, to)
	}
	return map[string]interface{}{
		"PendingDays":  pending,
		"ConsumedDays": consumed,
	}, nil
}

// Renew открывает новое окно начисления: размер отпуска пересчитывается по
// таблице политики от полного стажа, окно действует год плюс льготный срок.
func (i impl) Renew(employeeID string) error {
	logger := i.GetLogger(employeeID)
	emp, err := i.employeeStore.GetByID(employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return errs.ErrEmployeeNotFound
	}
	now := time.Now()
	years := fullYearsSince(emp.HiredAt, now)
	entitled := EntitledDaysForTenure(years)
	grace := config.Conf.Entitlement.GraceDays

	ok, err := lock.WithDelay(context.Background(), ledgerLockKey(employeeID), lockWait, func() error {
		ledger, lErr := i.store.GetByEmployee(employeeID)
		if lErr != nil {
			return lErr
		}
		windowStart := lastAnniversary(emp.HiredAt, now)
		windowEnd := windowStart.AddDate(1, 0, 0).AddDate(0, 0, grace)
		if ledger == nil {
			_, lErr = i.store.Create(dbmodels.EntitlementLedger{
				EmployeeID:   employeeID,
				EntitledDays: entitled,
				WindowStart:  windowStart,
				WindowEnd:    windowEnd,
			})
			return lErr
		}
		// неиспользованные дни сгорают, удержания под открытые заявки переносятся
		return i.store.Update(employeeID, map[string]interface{}{
			"EntitledDays": entitled,
			"ConsumedDays": 0,
			"WindowStart":  windowStart,
			"WindowEnd":    windowEnd,
		})
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("не удалось получить блокировку баланса сотрудника")
	}
	logger.
		WithField("entitled_days", entitled).
		Info("открыто новое окно начисления отпуска")
	return nil
}

func fullYearsSince(from, now time.Time) int {
	years := now.Year() - from.Year()
	if now.Month() < from.Month() ||
		(now.Month() == from.Month() && now.Day() < from.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func lastAnniversary(hiredAt, now time.Time) time.Time {
	anniversary := time.Date(now.Year(), hiredAt.Month(), hiredAt.Day(), 0, 0, 0, 0, time.UTC)
	if anniversary.After(now) {
		anniversary = anniversary.AddDate(-1, 0, 0)
	}
	return anniversary
}
