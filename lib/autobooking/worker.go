package autobookingworker

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	entitlementstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	requesthandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/request"
	baseworker "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/base-worker"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/helpers"
	requestapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/request"
)

func StartWorker(ctx context.Context) {
	interval := time.Duration(config.Conf.AutoBooking.RunIntervalHours) * time.Hour
	i := &impl{
		BaseImpl:         *baseworker.NewInstance("AutoBookingWorker", 15*time.Second, interval),
		entitlementStore: entitlementstore.NewInstance(db.DB),
		requests:         requesthandler.Instance,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	entitlementStore entitlementstore.Provider
	requests         requesthandler.Provider
}

// handle — ежедневный проход: сотрудникам, у которых окно начисления
// заканчивается в пределах горизонта, а отпуск за окно так и не взят,
// автоматически создаётся заявка на отпуск от имени системы.
func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	horizon := time.Duration(config.Conf.AutoBooking.HorizonDays) * 24 * time.Hour
	list, err := i.entitlementStore.ListExpiring(time.Now().Add(horizon))
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка заканчивающихся окон начисления")
		return
	}
	for _, ledger := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		// отпуск за окно уже использован или уже запрошен
		if ledger.ConsumedDays > 0 || ledger.PendingDays > 0 {
			continue
		}
		available := ledger.AvailableDays()
		if available <= 0 {
			continue
		}
		days := config.Conf.AutoBooking.BookingDays
		if days > available {
			days = available
		}
		// последний день брони — канун закрытия окна
		end := ledger.WindowEnd.AddDate(0, 0, -1)
		start := end.AddDate(0, 0, -(days - 1))
		bookingKey := bookingKeyFor(ledger.EmployeeID, ledger.WindowEnd)

		_, err = i.requests.CreateAuto(ledger.EmployeeID, requestapimodels.Period{Start: start, End: end}, days, bookingKey)
		if err != nil {
			// повторный запуск за тот же день и то же окно — штатная ситуация
			if errors.Is(err, errs.ErrDuplicateBooking) {
				continue
			}
			logger.
				WithError(err).
				WithField("employee_id", ledger.EmployeeID).
				Error("ошибка автобронирования отпуска")
			continue
		}
		logger.
			WithField("employee_id", ledger.EmployeeID).
			WithField("days", days).
			Info("создана автоматическая заявка на отпуск")
	}
}

// bookingKeyFor детерминирован для пары сотрудник+окно: вместе с уникальным
// индексом booking_key это гарантирует не более одной автозаявки на окно.
func bookingKeyFor(employeeID string, windowEnd time.Time) string {
	return fmt.Sprintf("%v:%v", employeeID, windowEnd.Format("2006-01-02"))
}
