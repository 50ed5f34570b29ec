package auditstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

// Журнал аудита допускает только добавление и чтение: методов изменения и
// удаления у хранилища намеренно нет.
type Provider interface {
	Append(rec dbmodels.AuditEntry) (id string, err error)
	List(requestID string) (list []dbmodels.AuditEntry, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Append(rec dbmodels.AuditEntry) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(requestID string) (list []dbmodels.AuditEntry, err error) {
	list = []dbmodels.AuditEntry{}
	err = i.db.
		Where("request_id = ?", requestID).
		Order("created_at ASC").
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
