package requestapimodels

import (
	"time"

	"github.com/pkg/errors"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type RequestCreateData struct {
	EmployeeID string `json:"employee_id"` // сотрудник, на которого создаётся заявка
	Kind       string `json:"kind"`        // тип заявки: vacaciones/permiso/horas_extra
	StartDate  string `json:"start_date"`  // начало периода, YYYY-MM-DD
	EndDate    string `json:"end_date"`    // окончание периода, YYYY-MM-DD
	Quantity   int    `json:"quantity"`    // дни (или часы для переработки)
	Reason     string `json:"reason"`      // причина/комментарий
}

const dateLayout = "2006-01-02"

func (d RequestCreateData) Validate() error {
	if d.EmployeeID == "" {
		return errors.New("не указан сотрудник")
	}
	if _, ok := models.ParseRequestKind(d.Kind); !ok {
		return errors.Errorf("неизвестный тип заявки: %v", d.Kind)
	}
	if d.Quantity <= 0 {
		return errors.New("количество должно быть больше нуля")
	}
	if _, err := d.GetPeriod(); err != nil {
		return err
	}
	return nil
}

type Period struct {
	Start time.Time
	End   time.Time
}

func (d RequestCreateData) GetPeriod() (Period, error) {
	start, err := time.Parse(dateLayout, d.StartDate)
	if err != nil {
		return Period{}, errors.New("не удалось разобрать дату начала, ожидается YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, d.EndDate)
	if err != nil {
		return Period{}, errors.New("не удалось разобрать дату окончания, ожидается YYYY-MM-DD")
	}
	if end.Before(start) {
		return Period{}, errors.New("дата окончания раньше даты начала")
	}
	return Period{Start: start, End: end}, nil
}

type DecisionData struct {
	Decision string `json:"decision"` // aprobado/rechazado
	Comment  string `json:"comment"`
}

func (d DecisionData) Validate() error {
	decision, ok := models.ParseDecision(d.Decision)
	if !ok || !decision.IsDecided() {
		return errors.Errorf("недопустимое решение: %v", d.Decision)
	}
	return nil
}

func (d DecisionData) GetDecision() models.ApprovalDecision {
	decision, _ := models.ParseDecision(d.Decision)
	return decision
}

type CancelData struct {
	Reason string `json:"reason"`
}

type ApprovalRecordView struct {
	ID           string                  `json:"id"`
	ApproverID   string                  `json:"approver_id"`
	ApproverName string                  `json:"approver_name"`
	Sequence     int                     `json:"sequence"`
	Decision     models.ApprovalDecision `json:"decision"`
	DecidedAt    *time.Time              `json:"decided_at,omitempty"`
	Comment      string                  `json:"comment,omitempty"`
}

type RequestView struct {
	ID           string               `json:"id"`
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Kind         models.RequestKind   `json:"kind"`
	State        models.RequestState  `json:"state"`
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Quantity     int                  `json:"quantity"`
	Reason       string               `json:"reason,omitempty"`
	CreatedBy    string               `json:"created_by"`
	CreatedAt    time.Time            `json:"created_at"`
	Approvals    []ApprovalRecordView `json:"approvals"`
}

func RequestConvert(rec dbmodels.Request) RequestView {
	result := RequestView{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Kind:       rec.Kind,
		State:      rec.State,
		StartDate:  rec.StartDate.Format(dateLayout),
		EndDate:    rec.EndDate.Format(dateLayout),
		Quantity:   rec.Quantity,
		Reason:     rec.Reason,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.Employee != nil {
		result.EmployeeName = rec.Employee.GetFullName()
	}
	result.Approvals = make([]ApprovalRecordView, 0, len(rec.ApprovalRecords))
	for _, task := range rec.ApprovalRecords {
		result.Approvals = append(result.Approvals, ApprovalRecordConvert(task))
	}
	return result
}

func ApprovalRecordConvert(rec dbmodels.ApprovalRecord) ApprovalRecordView {
	result := ApprovalRecordView{
		ID:         rec.ID,
		ApproverID: rec.ApproverID,
		Sequence:   rec.Sequence,
		Decision:   rec.Decision,
		DecidedAt:  rec.DecidedAt,
		Comment:    rec.Comment,
	}
	if rec.Approver != nil {
		result.ApproverName = rec.Approver.GetFullName()
	}
	return result
}

type AuditEntryView struct {
	ID            string              `json:"id"`
	ActorID       string              `json:"actor_id"`
	Action        models.AuditAction  `json:"action"`
	PreviousState models.RequestState `json:"previous_state"`
	NewState      models.RequestState `json:"new_state"`
	Comment       string              `json:"comment,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

func AuditEntryConvert(rec dbmodels.AuditEntry) AuditEntryView {
	return AuditEntryView{
		ID:            rec.ID,
		ActorID:       rec.ActorID,
		Action:        rec.Action,
		PreviousState: rec.PreviousState,
		NewState:      rec.NewState,
		Comment:       rec.Comment,
		Timestamp:     rec.CreatedAt,
	}
}
