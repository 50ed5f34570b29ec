package entitlementstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type Provider interface {
	Create(rec dbmodels.EntitlementLedger) (id string, err error)
	GetByEmployee(employeeID string) (rec *dbmodels.EntitlementLedger, err error)
	Update(employeeID string, updMap map[string]interface{}) error
	// ListExpiring — окна, заканчивающиеся не позже deadline.
	ListExpiring(deadline time.Time) (list []dbmodels.EntitlementLedger, err error)

	CreateReservation(rec dbmodels.Reservation) (id string, err error)
	GetReservation(id string) (rec *dbmodels.Reservation, err error)
	UpdateReservation(id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.EntitlementLedger) (id string, err error) {
	if err = rec.Validate(); err != nil {
		return "", err
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

func (i impl) GetByEmployee(employeeID string) (*dbmodels.EntitlementLedger, error) {
	rec := dbmodels.EntitlementLedger{}
	err := i.db.
		Where("employee_id = ?", employeeID).
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

func (i impl) Update(employeeID string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.EntitlementLedger{}).
		Where("employee_id = ?", employeeID).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

func (i impl) ListExpiring(deadline time.Time) (list []dbmodels.EntitlementLedger, err error) {
	list = []dbmodels.EntitlementLedger{}
	err = i.db.
		Where("window_end <= ?", deadline).
		Order("window_end ASC").
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

func (i impl) CreateReservation(rec dbmodels.Reservation) (id string, err error) {
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetReservation(id string) (*dbmodels.Reservation, error) {
	rec := dbmodels.Reservation{}
	err := i.db.
		Where("id = ?", id).
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

func (i impl) UpdateReservation(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.Reservation{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
