package dbmodels

import (
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
)

// EntitlementLedger — баланс дней отпуска сотрудника в текущем окне.
// Инвариант: ConsumedDays + PendingDays <= EntitledDays после каждой операции.
type EntitlementLedger struct {
	BaseModel
	EmployeeID   string    `gorm:"type:varchar(36);uniqueIndex"`
	Employee     *Employee `gorm:"foreignKey:EmployeeID"`
	EntitledDays int
	ConsumedDays int
	PendingDays  int
	WindowStart  time.Time
	WindowEnd    time.Time `gorm:"index"`
}

func (l EntitlementLedger) AvailableDays() int {
	return l.EntitledDays - l.ConsumedDays - l.PendingDays
}

func (l *EntitlementLedger) Validate() error {
	if l.EmployeeID == "" {
		return errors.New("не указан сотрудник")
	}
	if l.ConsumedDays+l.PendingDays > l.EntitledDays {
		return errors.New("баланс дней нарушен: consumed + pending > entitled")
	}
	return nil
}

// Reservation — провизорное удержание дней под конкретную заявку.
type Reservation struct {
	BaseModel
	EmployeeID string `gorm:"type:varchar(36);index"`
	RequestID  string `gorm:"type:varchar(36);index"`
	Days       int
	State      models.ReservationState `gorm:"type:varchar(50)"`
}
