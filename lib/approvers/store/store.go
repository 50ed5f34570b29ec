package approverstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

// Реестр назначенных согласующих. Версионируемая таблица: назначение создаёт
// запись, отзыв только снимает признак активности.
type Provider interface {
	Appoint(employeeID string) (id string, err error)
	Revoke(employeeID string) error
	ListActive() (list []dbmodels.DesignatedApprover, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Appoint(employeeID string) (id string, err error) {
	rec := dbmodels.DesignatedApprover{
		EmployeeID:  employeeID,
		AppointedAt: time.Now(),
		IsActive:    true,
	}
	err = i.db.
		Omit("Employee").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) Revoke(employeeID string) error {
	err := i.db.
		Model(&dbmodels.DesignatedApprover{}).
		Where("employee_id = ?", employeeID).
		Where("is_active = ?", true).
		Updates(map[string]interface{}{"IsActive": false}).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ListActive() (list []dbmodels.DesignatedApprover, err error) {
	list = []dbmodels.DesignatedApprover{}
	err = i.db.
		Where("is_active = ?", true).
		Order("appointed_at ASC").
		Preload("Employee").
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
