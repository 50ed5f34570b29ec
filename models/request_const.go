package models

import "strings"

// Канонические значения статусов и решений. В старой системе они хранились
// как свободный текст и накопили несколько написаний одного и того же
// значения, поэтому разбор входных данных идёт только через Parse-функции.

type RequestKind string

const (
	RequestKindVacation RequestKind = "vacaciones"
	RequestKindLeave    RequestKind = "permiso"
	RequestKindOvertime RequestKind = "horas_extra"
)

func (k RequestKind) IsValid() bool {
	switch k {
	case RequestKindVacation, RequestKindLeave, RequestKindOvertime:
		return true
	}
	return false
}

type RequestState string

const (
	RequestStatePending   RequestState = "pendiente"
	RequestStateApproved  RequestState = "aprobada"
	RequestStateRejected  RequestState = "rechazada"
	RequestStateCancelled RequestState = "cancelada"
)

// IsTerminal — терминальные статусы заявок не изменяются обычным decide.
func (s RequestState) IsTerminal() bool {
	return s == RequestStateApproved || s == RequestStateRejected || s == RequestStateCancelled
}

type ApprovalDecision string

const (
	DecisionPending  ApprovalDecision = "pendiente"
	DecisionApproved ApprovalDecision = "aprobado"
	DecisionRejected ApprovalDecision = "rechazado"
)

func (d ApprovalDecision) IsDecided() bool {
	return d == DecisionApproved || d == DecisionRejected
}

type AuditAction string

const (
	AuditRequestCreated   AuditAction = "solicitud_creada"
	AuditDecisionRecorded AuditAction = "decision_registrada"
	AuditDecisionAmended  AuditAction = "decision_corregida"
	AuditRequestApproved  AuditAction = "solicitud_aprobada"
	AuditRequestRejected  AuditAction = "solicitud_rechazada"
	AuditRequestCancelled AuditAction = "solicitud_cancelada"
)

type ReservationState string

const (
	ReservationHeld      ReservationState = "held"
	ReservationCommitted ReservationState = "committed"
	ReservationReleased  ReservationState = "released"
)

// таблицы соответствия для унаследованных написаний
var kindAliases = map[string]RequestKind{
	"vacaciones":  RequestKindVacation,
	"vacacion":    RequestKindVacation,
	"permiso":     RequestKindLeave,
	"permisos":    RequestKindLeave,
	"horas_extra": RequestKindOvertime,
	"horasextra":  RequestKindOvertime,
	"overtime":    RequestKindOvertime,
}

var decisionAliases = map[string]ApprovalDecision{
	"pendiente": DecisionPending,
	"aprobado":  DecisionApproved,
	"aprobada":  DecisionApproved,
	"aceptado":  DecisionApproved,
	"rechazado": DecisionRejected,
	"rechazada": DecisionRejected,
}

func ParseRequestKind(v string) (RequestKind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(v))]
	return kind, ok
}

func ParseDecision(v string) (ApprovalDecision, bool) {
	decision, ok := decisionAliases[strings.ToLower(strings.TrimSpace(v))]
	return decision, ok
}
