package dbmodels

import (
	"time"
)

// BaseModel встраивается во все сущности процесса согласования.
// Идентификатор генерируется на стороне БД, кроме заявок: там ID
// создаётся заранее, чтобы резерв дней мог на него ссылаться.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;default:uuid_generate_v4()" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
