package requeststore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type Provider interface {
	// CreateWithApprovals создаёт заявку, её записи согласования и запись
	// аудита одной транзакцией: частично созданная заявка не наблюдаема.
	CreateWithApprovals(rec dbmodels.Request, tasks []dbmodels.ApprovalRecord, entry dbmodels.AuditEntry) (id string, err error)
	GetByID(id string) (rec *dbmodels.Request, err error)
	Update(id string, updMap map[string]interface{}) error
	UpdateApproval(id string, updMap map[string]interface{}) error
	ExistsByBookingKey(bookingKey string) (bool, error)
	ListPendingByApprover(approverID string) (list []dbmodels.Request, err error)
	ListByEmployee(employeeID string) (list []dbmodels.Request, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) CreateWithApprovals(rec dbmodels.Request, tasks []dbmodels.ApprovalRecord, entry dbmodels.AuditEntry) (id string, err error) {
	err = i.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Employee", "ApprovalRecords").Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrDuplicateBooking
			}
			return err
		}
		for idx := range tasks {
			tasks[idx].RequestID = rec.ID
			if err := tx.Omit("Approver").Create(&tasks[idx]).Error; err != nil {
				return err
			}
		}
		entry.RequestID = rec.ID
		return tx.Create(&entry).Error
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Request, error) {
	rec := dbmodels.Request{}
	err := i.db.
		Where("id = ?", id).
		Preload("Employee").
		Preload("ApprovalRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("approval_records.sequence ASC")
		}).
		Preload("ApprovalRecords.Approver").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.Request{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) UpdateApproval(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.ApprovalRecord{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ExistsByBookingKey(bookingKey string) (bool, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.Request{}).
		Where("booking_key = ?", bookingKey).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (i impl) ListPendingByApprover(approverID string) (list []dbmodels.Request, err error) {
	list = []dbmodels.Request{}
	err = i.db.
		Joins("JOIN approval_records ON approval_records.request_id = requests.id").
		Where("approval_records.approver_id = ?", approverID).
		Where("approval_records.decision = ?", models.DecisionPending).
		Where("requests.state = ?", models.RequestStatePending).
		Preload("Employee").
		Preload("ApprovalRecords").
		Order("requests.created_at ASC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) ListByEmployee(employeeID string) (list []dbmodels.Request, err error) {
	list = []dbmodels.Request{}
	err = i.db.
		Where("employee_id = ?", employeeID).
		Preload("ApprovalRecords").
		Order("created_at DESC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}
