package requesthandler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	approvershandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/approvers"
	auditstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/audit/store"
	employeestore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee/store"
	entitlementhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	hierarchyhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/hierarchy"
	notifyhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/notify"
	requeststore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/request/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/lock"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	requestapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/request"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type Provider interface {
	Create(actorID string, data requestapimodels.RequestCreateData) (id string, err error)
	// CreateAuto — путь создания для планировщика автобронирования:
	// проверка прав автора пропускается, резервирование баланса — нет.
	CreateAuto(employeeID string, period requestapimodels.Period, days int, bookingKey string) (id string, err error)
	Decide(requestID, approverID string, decision models.ApprovalDecision, comment string) (models.RequestState, error)
	Amend(requestID, approverID string, decision models.ApprovalDecision, comment string) (models.RequestState, error)
	Cancel(requestID, actorID, reason string) error
	GetByID(requestID string) (requestapimodels.RequestView, error)
	GetPendingFor(approverID string) ([]requestapimodels.RequestView, error)
	ListByEmployee(employeeID string) ([]requestapimodels.RequestView, error)
	History(requestID string) ([]requestapimodels.AuditEntryView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:         requeststore.NewInstance(db.DB),
		employeeStore: employeestore.NewInstance(db.DB),
		auditStore:    auditstore.NewInstance(db.DB),
		entitlement:   entitlementhandler.Instance,
		hierarchy:     hierarchyhandler.Instance,
		panel:         approvershandler.Instance,
		notify:        notifyhandler.Instance,
	}
}

type impl struct {
	store         requeststore.Provider
	employeeStore employeestore.Provider
	auditStore    auditstore.Provider
	entitlement   entitlementhandler.Provider
	hierarchy     hierarchyhandler.Provider
	panel         approvershandler.Provider
	notify        notifyhandler.Provider
}

const lockWait = 10 * time.Second

func requestLockKey(requestID string) string {
	return "request:" + requestID
}

func (i impl) GetLogger(requestID string) *log.Entry {
	return log.WithField("request_id", requestID)
}

func (i impl) Create(actorID string, data requestapimodels.RequestCreateData) (id string, err error) {
	if err = data.Validate(); err != nil {
		return "", err
	}
	period, err := data.GetPeriod()
	if err != nil {
		return "", err
	}
	emp, err := i.getEmployee(data.EmployeeID)
	if err != nil {
		return "", err
	}
	if err = i.checkCreateAuthorized(actorID, emp.ID); err != nil {
		return "", err
	}
	kind, _ := models.ParseRequestKind(data.Kind)
	return i.create(actorID, emp.ID, kind, period, data.Quantity, data.Reason, nil)
}

func (i impl) CreateAuto(employeeID string, period requestapimodels.Period, days int, bookingKey string) (id string, err error) {
	if days <= 0 {
		return "", errors.New("количество дней должно быть больше нуля")
	}
	if bookingKey == "" {
		return "", errors.New("не указан ключ автобронирования")
	}
	if _, err = i.getEmployee(employeeID); err != nil {
		return "", err
	}
	exists, err := i.store.ExistsByBookingKey(bookingKey)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errs.ErrDuplicateBooking
	}
	return i.create(models.SystemActorID, employeeID, models.RequestKindVacation, period,
		days, "автоматическое бронирование отпуска до окончания окна начисления", &bookingKey)
}

// create — общий путь создания: панель, резервация дней, заявка с записями
// согласования и запись аудита одной транзакцией.
func (i impl) create(createdBy, employeeID string, kind models.RequestKind, period requestapimodels.Period, quantity int, reason string, bookingKey *string) (string, error) {
	panelIDs, err := i.panel.SelectPanel(kind)
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()
	logger := i.GetLogger(requestID).WithField("employee_id", employeeID)

	reservationID := ""
	if kind == models.RequestKindVacation {
		reservationID, err = i.entitlement.Reserve(employeeID, requestID, quantity)
		if err != nil {
			return "", err
		}
	}

	rec := dbmodels.Request{
		BaseModel:  dbmodels.BaseModel{ID: requestID},
		EmployeeID: employeeID,
		Kind:       kind,
		State:      models.RequestStatePending,
		StartDate:  period.Start,
		EndDate:    period.End,
		Quantity:   quantity,
		Reason:     reason,
		CreatedBy:  createdBy,
		BookingKey: bookingKey,
	}
	if reservationID != "" {
		rec.ReservationID = &reservationID
	}
	tasks := make([]dbmodels.ApprovalRecord, 0, len(panelIDs))
	for idx, approverID := range panelIDs {
		tasks = append(tasks, dbmodels.ApprovalRecord{
			ApproverID: approverID,
			Sequence:   idx + 1,
			Decision:   models.DecisionPending,
		})
	}
	entry := dbmodels.AuditEntry{
		ActorID:  createdBy,
		Action:   models.AuditRequestCreated,
		NewState: models.RequestStatePending,
		Comment:  reason,
	}

	id, err := i.store.CreateWithApprovals(rec, tasks, entry)
	if err != nil {
		// компенсация: упавшее создание не должно оставить удержанные дни
		if reservationID != "" {
			if rErr := i.entitlement.Release(reservationID); rErr != nil {
				logger.WithError(rErr).Error("не удалось освободить резервацию после сбоя создания заявки")
			}
		}
		logger.WithError(err).Error("ошибка создания заявки")
		return "", err
	}
	i.notify.RequestCreated(rec, panelIDs)
	logger.
		WithField("kind", kind).
		WithField("panel_size", len(panelIDs)).
		Info("создана заявка")
	return id, nil
}

func (i impl) Decide(requestID, approverID string, decision models.ApprovalDecision, comment string) (newState models.RequestState, err error) {
	if !decision.IsDecided() {
		return "", errors.Errorf("недопустимое решение: %v", decision)
	}
	logger := i.GetLogger(requestID).WithField("approver_id", approverID)
	// единая точка сериализации: две параллельные финализации одной заявки невозможны
	ok, err := lock.WithDelay(context.Background(), requestLockKey(requestID), lockWait, func() error {
		rec, lErr := i.getRec(requestID)
		if lErr != nil {
			return lErr
		}
		if rec.State != models.RequestStatePending {
			return errs.ErrNotPending
		}
		task := rec.FindApproval(approverID)
		if task == nil {
			return errs.ErrNotApprover
		}
		if task.Decision != models.DecisionPending {
			return errs.ErrAlreadyDecided
		}
		now := time.Now()
		lErr = i.store.UpdateApproval(task.ID, map[string]interface{}{
			"Decision":  decision,
			"DecidedAt": &now,
			"Comment":   comment,
		})
		if lErr != nil {
			return lErr
		}
		task.Decision = decision

		newState = evaluateConsensus(rec.ApprovalRecords)
		_, lErr = i.auditStore.Append(dbmodels.AuditEntry{
			RequestID:     requestID,
			ActorID:       approverID,
			Action:        models.AuditDecisionRecorded,
			PreviousState: models.RequestStatePending,
			NewState:      newState,
			Comment:       comment,
		})
		if lErr != nil {
			return lErr
		}
		if newState != models.RequestStatePending {
			return i.finalize(rec, newState, approverID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("не удалось получить блокировку заявки")
	}
	logger.
		WithField("decision", decision).
		WithField("new_state", newState).
		Info("решение по заявке зафиксировано")
	return newState, nil
}

// Amend — корректировка уже зафиксированного решения тем же согласующим в
// пределах окна. Заявка может быть уже финализирована: корректировка после
// факта тоже допустима, консенсус пересчитывается заново.
func (i impl) Amend(requestID, approverID string, decision models.ApprovalDecision, comment string) (newState models.RequestState, err error) {
	if !decision.IsDecided() {
		return "", errors.Errorf("недопустимое решение: %v", decision)
	}
	logger := i.GetLogger(requestID).WithField("approver_id", approverID)
	ok, err := lock.WithDelay(context.Background(), requestLockKey(requestID), lockWait, func() error {
		rec, lErr := i.getRec(requestID)
		if lErr != nil {
			return lErr
		}
		// отменённую заявку корректировка не воскрешает
		if rec.State == models.RequestStateCancelled {
			return errs.ErrNotPending
		}
		task := rec.FindApproval(approverID)
		if task == nil {
			return errs.ErrNotApprover
		}
		if !task.Decision.IsDecided() {
			return errs.ErrNotDecided
		}
		// окно отсчитывается от исходного времени решения
		amendWindow := time.Duration(config.Conf.Workflow.AmendWindowHours) * time.Hour
		if task.DecidedAt == nil || time.Since(*task.DecidedAt) > amendWindow {
			return errs.ErrAmendWindowExpired
		}
		if task.Decision == decision {
			newState = rec.State
			return nil
		}

		prevState := rec.State
		task.Decision = decision
		newState = evaluateConsensus(rec.ApprovalRecords)

		// сначала баланс: если дней уже не хватает, корректировка отклоняется
		// целиком и решение остаётся прежним
		if newState != prevState && rec.Kind == models.RequestKindVacation && rec.ReservationID != nil {
			if lErr = i.entitlement.Transition(*rec.ReservationID, reservationStateFor(newState)); lErr != nil {
				return lErr
			}
		}
		lErr = i.store.UpdateApproval(task.ID, map[string]interface{}{
			"Decision": decision,
			"Comment":  comment,
		})
		if lErr != nil {
			return lErr
		}
		_, lErr = i.auditStore.Append(dbmodels.AuditEntry{
			RequestID:     requestID,
			ActorID:       approverID,
			Action:        models.AuditDecisionAmended,
			PreviousState: prevState,
			NewState:      newState,
			Comment:       comment,
		})
		if lErr != nil {
			return lErr
		}
		if newState != prevState {
			lErr = i.store.Update(requestID, map[string]interface{}{
				"State": newState,
			})
			if lErr != nil {
				return lErr
			}
			if newState.IsTerminal() {
				_, lErr = i.auditStore.Append(dbmodels.AuditEntry{
					RequestID:     requestID,
					ActorID:       approverID,
					Action:        finalAuditAction(newState),
					PreviousState: prevState,
					NewState:      newState,
				})
				if lErr != nil {
					return lErr
				}
				i.notify.RequestFinalized(*rec, newState)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("не удалось получить блокировку заявки")
	}
	logger.
		WithField("decision", decision).
		WithField("new_state", newState).
		Info("решение по заявке скорректировано")
	return newState, nil
}

func (i impl) Cancel(requestID, actorID, reason string) error {
	logger := i.GetLogger(requestID).WithField("actor_id", actorID)
	ok, err := lock.WithDelay(context.Background(), requestLockKey(requestID), lockWait, func() error {
		rec, lErr := i.getRec(requestID)
		if lErr != nil {
			return lErr
		}
		// отменить можно ожидающую заявку, а для отпуска — и согласованную:
		// в этом случае списанные дни возвращаются
		if rec.State != models.RequestStatePending && rec.State != models.RequestStateApproved {
			return errs.ErrNotPending
		}
		if lErr = i.checkCancelAuthorized(actorID, *rec); lErr != nil {
			return lErr
		}
		if rec.Kind == models.RequestKindVacation && rec.ReservationID != nil {
			if lErr = i.entitlement.Release(*rec.ReservationID); lErr != nil {
				return lErr
			}
		}
		prevState := rec.State
		lErr = i.store.Update(requestID, map[string]interface{}{
			"State": models.RequestStateCancelled,
		})
		if lErr != nil {
			return lErr
		}
		_, lErr = i.auditStore.Append(dbmodels.AuditEntry{
			RequestID:     requestID,
			ActorID:       actorID,
			Action:        models.AuditRequestCancelled,
			PreviousState: prevState,
			NewState:      models.RequestStateCancelled,
			Comment:       reason,
		})
		if lErr != nil {
			return lErr
		}
		i.notify.RequestCancelled(*rec)
		return nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("не удалось получить блокировку заявки")
	}
	logger.Info("заявка отменена")
	return nil
}

func (i impl) GetByID(requestID string) (requestapimodels.RequestView, error) {
	rec, err := i.getRec(requestID)
	if err != nil {
		return requestapimodels.RequestView{}, err
	}
	return requestapimodels.RequestConvert(*rec), nil
}

func (i impl) GetPendingFor(approverID string) ([]requestapimodels.RequestView, error) {
	list, err := i.store.ListPendingByApprover(approverID)
	if err != nil {
		return nil, err
	}
	result := make([]requestapimodels.RequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, requestapimodels.RequestConvert(rec))
	}
	return result, nil
}

func (i impl) ListByEmployee(employeeID string) ([]requestapimodels.RequestView, error) {
	list, err := i.store.ListByEmployee(employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]requestapimodels.RequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, requestapimodels.RequestConvert(rec))
	}
	return result, nil
}

func (i impl) History(requestID string) ([]requestapimodels.AuditEntryView, error) {
	if _, err := i.getRec(requestID); err != nil {
		return nil, err
	}
	list, err := i.auditStore.List(requestID)
	if err != nil {
		return nil, err
	}
	result := make([]requestapimodels.AuditEntryView, 0, len(list))
	for _, rec := range list {
		result = append(result, requestapimodels.AuditEntryConvert(rec))
	}
	return result, nil
}

// evaluateConsensus — правило «одно вето, согласование единогласно»:
// любой отказ отклоняет заявку, для согласования нужны решения всех.
// Оценивается по фактически назначенным записям, а не по размеру панели.
func evaluateConsensus(tasks []dbmodels.ApprovalRecord) models.RequestState {
	allApproved := true
	for _, task := range tasks {
		switch task.Decision {
		case models.DecisionRejected:
			return models.RequestStateRejected
		case models.DecisionApproved:
		default:
			allApproved = false
		}
	}
	if allApproved && len(tasks) > 0 {
		return models.RequestStateApproved
	}
	return models.RequestStatePending
}

func (i impl) finalize(rec *dbmodels.Request, newState models.RequestState, actorID string) error {
	err := i.store.Update(rec.ID, map[string]interface{}{
		"State": newState,
	})
	if err != nil {
		return err
	}
	if rec.Kind == models.RequestKindVacation && rec.ReservationID != nil {
		switch newState {
		case models.RequestStateApproved:
			err = i.entitlement.Commit(*rec.ReservationID)
		case models.RequestStateRejected:
			err = i.entitlement.Release(*rec.ReservationID)
		}
		if err != nil {
			return err
		}
	}
	_, err = i.auditStore.Append(dbmodels.AuditEntry{
		RequestID:     rec.ID,
		ActorID:       actorID,
		Action:        finalAuditAction(newState),
		PreviousState: models.RequestStatePending,
		NewState:      newState,
	})
	if err != nil {
		return err
	}
	i.notify.RequestFinalized(*rec, newState)
	return nil
}

func finalAuditAction(state models.RequestState) models.AuditAction {
	if state == models.RequestStateApproved {
		return models.AuditRequestApproved
	}
	return models.AuditRequestRejected
}

func reservationStateFor(state models.RequestState) models.ReservationState {
	switch state {
	case models.RequestStateApproved:
		return models.ReservationCommitted
	case models.RequestStateRejected, models.RequestStateCancelled:
		return models.ReservationReleased
	}
	return models.ReservationHeld
}

func (i impl) getRec(requestID string) (*dbmodels.Request, error) {
	rec, err := i.store.GetByID(requestID)
	if err != nil {
		i.GetLogger(requestID).WithError(err).Error("ошибка получения заявки")
		return nil, err
	}
	if rec == nil {
		return nil, errs.ErrRequestNotFound
	}
	return rec, nil
}

func (i impl) getEmployee(employeeID string) (*dbmodels.Employee, error) {
	emp, err := i.employeeStore.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil || !emp.IsActive {
		return nil, errs.ErrEmployeeNotFound
	}
	return emp, nil
}

// checkCreateAuthorized: заявку на себя может создать сам сотрудник,
// на другого — администратор или руководитель по иерархии.
func (i impl) checkCreateAuthorized(actorID, employeeID string) error {
	if actorID == employeeID {
		return nil
	}
	actor, err := i.employeeStore.GetByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsActive {
		return errs.ErrNotAuthorized
	}
	if actor.Role.IsAdmin() {
		return nil
	}
	isManager, err := i.hierarchy.IsAncestor(actorID, employeeID)
	if err != nil {
		return err
	}
	if !isManager {
		return errs.ErrNotAuthorized
	}
	return nil
}

func (i impl) checkCancelAuthorized(actorID string, rec dbmodels.Request) error {
	if actorID == rec.CreatedBy || actorID == rec.EmployeeID {
		return nil
	}
	actor, err := i.employeeStore.GetByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsActive {
		return errs.ErrNotAuthorized
	}
	if actor.Role.IsAdmin() {
		return nil
	}
	isManager, err := i.hierarchy.IsAncestor(actorID, rec.EmployeeID)
	if err != nil {
		return err
	}
	if !isManager {
		return errs.ErrNotAuthorized
	}
	return nil
}
