package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Employee{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Employee")
	}
	if err := DB.AutoMigrate(&dbmodels.DesignatedApprover{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры DesignatedApprover")
	}
	if err := DB.AutoMigrate(&dbmodels.EntitlementLedger{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры EntitlementLedger")
	}
	if err := DB.AutoMigrate(&dbmodels.Reservation{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Reservation")
	}
	if err := DB.AutoMigrate(&dbmodels.Request{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Request")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalRecord{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры ApprovalRecord")
	}
	if err := DB.AutoMigrate(&dbmodels.AuditEntry{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры AuditEntry")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
