package dbmodels

import (
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
)

type Employee struct {
	BaseModel
	FirstName    string `gorm:"type:varchar(150)"`
	LastName     string `gorm:"type:varchar(150)"`
	Email        string `gorm:"type:varchar(255)"`
	DepartmentID string `gorm:"type:varchar(36)"`
	JobTitle     string `gorm:"type:varchar(255)"`
	Role         models.UserRole `gorm:"type:varchar(50)"`
	// SupervisorID — прямой руководитель (ноль или один), граф руководителей
	// не должен содержать циклов.
	SupervisorID *string   `gorm:"type:varchar(36);index"`
	Supervisor   *Employee `gorm:"foreignKey:SupervisorID"`
	HiredAt      time.Time
	IsActive     bool
}

func (e Employee) GetFullName() string {
	return e.FirstName + " " + e.LastName
}

func (e *Employee) Validate() error {
	if e.FirstName == "" && e.LastName == "" {
		return errors.New("не указано имя сотрудника")
	}
	if e.HiredAt.IsZero() {
		return errors.New("не указана дата приёма на работу")
	}
	return nil
}

// DesignatedApprover — запись реестра назначенных согласующих.
// Реестр версионируется признаком IsActive, записи не удаляются.
type DesignatedApprover struct {
	BaseModel
	EmployeeID  string    `gorm:"type:varchar(36);index"`
	Employee    *Employee `gorm:"foreignKey:EmployeeID"`
	AppointedAt time.Time
	IsActive    bool
}
