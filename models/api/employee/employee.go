package employeeapimodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

const dateLayout = "2006-01-02"

type EmployeeData struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	DepartmentID string `json:"department_id"`
	JobTitle     string `json:"job_title"`
	Role         string `json:"role"` // EMPLOYEE/MANAGER/ADMIN
	SupervisorID string `json:"supervisor_id,omitempty"`
	HiredAt      string `json:"hired_at"` // YYYY-MM-DD
}

func (d EmployeeData) Validate() error {
	if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
		return errors.New("не указаны имя и фамилия сотрудника")
	}
	if d.Email == "" {
		return errors.New("не указана почта сотрудника")
	}
	switch models.UserRole(d.Role) {
	case models.UserRoleEmployee, models.UserRoleManager, models.UserRoleAdmin:
	default:
		return errors.Errorf("неизвестная роль: %v", d.Role)
	}
	if _, err := d.GetHiredAt(); err != nil {
		return err
	}
	return nil
}

func (d EmployeeData) GetHiredAt() (time.Time, error) {
	hiredAt, err := time.Parse(dateLayout, d.HiredAt)
	if err != nil {
		return time.Time{}, errors.New("не удалось разобрать дату найма, ожидается YYYY-MM-DD")
	}
	return hiredAt, nil
}

type EmployeeView struct {
	ID           string          `json:"id"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	DepartmentID string          `json:"department_id,omitempty"`
	JobTitle     string          `json:"job_title,omitempty"`
	Role         models.UserRole `json:"role"`
	SupervisorID string          `json:"supervisor_id,omitempty"`
	HiredAt      string          `json:"hired_at"`
	IsActive     bool            `json:"is_active"`
}

func EmployeeConvert(rec dbmodels.Employee) EmployeeView {
	result := EmployeeView{
		ID:           rec.ID,
		FullName:     rec.GetFullName(),
		Email:        rec.Email,
		DepartmentID: rec.DepartmentID,
		JobTitle:     rec.JobTitle,
		Role:         rec.Role,
		HiredAt:      rec.HiredAt.Format(dateLayout),
		IsActive:     rec.IsActive,
	}
	if rec.SupervisorID != nil {
		result.SupervisorID = *rec.SupervisorID
	}
	return result
}

type EntitlementView struct {
	EmployeeID    string `json:"employee_id"`
	EntitledDays  int    `json:"entitled_days"`
	ConsumedDays  int    `json:"consumed_days"`
	PendingDays   int    `json:"pending_days"`
	AvailableDays int    `json:"available_days"`
	WindowStart   string `json:"window_start"`
	WindowEnd     string `json:"window_end"`
}

func EntitlementConvert(rec dbmodels.EntitlementLedger) EntitlementView {
	return EntitlementView{
		EmployeeID:    rec.EmployeeID,
		EntitledDays:  rec.EntitledDays,
		ConsumedDays:  rec.ConsumedDays,
		PendingDays:   rec.PendingDays,
		AvailableDays: rec.AvailableDays(),
		WindowStart:   rec.WindowStart.Format(dateLayout),
		WindowEnd:     rec.WindowEnd.Format(dateLayout),
	}
}

type ApproverView struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	AppointedAt  time.Time `json:"appointed_at"`
}

func ApproverConvert(rec dbmodels.DesignatedApprover) ApproverView {
	result := ApproverView{
		EmployeeID:  rec.EmployeeID,
		AppointedAt: rec.AppointedAt,
	}
	if rec.Employee != nil {
		result.EmployeeName = rec.Employee.GetFullName()
	}
	return result
}
