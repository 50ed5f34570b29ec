package dbmodels

import (
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
)

type Request struct {
	BaseModel
	EmployeeID string    `gorm:"type:varchar(36);index"`
	Employee   *Employee `gorm:"foreignKey:EmployeeID"`
	Kind       models.RequestKind  `gorm:"type:varchar(50)"`
	State      models.RequestState `gorm:"type:varchar(50);index"`
	StartDate  time.Time
	EndDate    time.Time
	// Quantity — дни для отпусков/отгулов, часы для переработки.
	Quantity int
	Reason   string
	// CreatedBy — автор заявки: сам сотрудник, руководитель, администратор
	// или models.SystemActorID для автосозданных заявок.
	CreatedBy string `gorm:"type:varchar(36)"`
	// BookingKey заполняется только планировщиком автобронирования,
	// уникальный индекс защищает от повторного создания.
	BookingKey    *string `gorm:"type:varchar(100);uniqueIndex"`
	ReservationID *string `gorm:"type:varchar(36)"`

	ApprovalRecords []ApprovalRecord `gorm:"foreignKey:RequestID"`
}

func (r *Request) Validate() error {
	if r.EmployeeID == "" {
		return errors.New("не указан сотрудник")
	}
	if !r.Kind.IsValid() {
		return errors.Errorf("неизвестный тип заявки: %v", r.Kind)
	}
	if r.Quantity <= 0 {
		return errors.New("количество дней/часов должно быть больше нуля")
	}
	if r.EndDate.Before(r.StartDate) {
		return errors.New("дата окончания раньше даты начала")
	}
	return nil
}

// FindApproval возвращает запись согласования указанного согласующего.
func (r Request) FindApproval(approverID string) *ApprovalRecord {
	for idx := range r.ApprovalRecords {
		if r.ApprovalRecords[idx].ApproverID == approverID {
			return &r.ApprovalRecords[idx]
		}
	}
	return nil
}

type ApprovalRecord struct {
	BaseModel
	RequestID  string    `gorm:"type:varchar(36);index"`
	ApproverID string    `gorm:"type:varchar(36);index"`
	Approver   *Employee `gorm:"foreignKey:ApproverID"`
	// Sequence — порядковый номер в панели (1..N), по старшинству назначения.
	Sequence  int
	Decision  models.ApprovalDecision `gorm:"type:varchar(50)"`
	DecidedAt *time.Time
	Comment   string
}
