package dbmodels

import (
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
)

// AuditEntry — журнал переходов по заявкам, только добавление.
// Записи никогда не изменяются и не удаляются; корректировка решения
// пишет новую запись, а не переписывает историю.
type AuditEntry struct {
	BaseModel
	RequestID     string             `gorm:"type:varchar(36);index"`
	ActorID       string             `gorm:"type:varchar(36)"`
	Action        models.AuditAction `gorm:"type:varchar(100)"`
	PreviousState models.RequestState `gorm:"type:varchar(50)"`
	NewState      models.RequestState `gorm:"type:varchar(50)"`
	Comment       string
}
