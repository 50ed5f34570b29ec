package requesthandler

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	employeeapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/employee"
	requestapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/request"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type fakeRequestStore struct {
	requests map[string]*dbmodels.Request
	audit    *fakeAuditStore
	seq      int
	failNext error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: map[string]*dbmodels.Request{}}
}

func (s *fakeRequestStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeRequestStore) CreateWithApprovals(rec dbmodels.Request, tasks []dbmodels.ApprovalRecord, entry dbmodels.AuditEntry) (string, error) {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return "", err
	}
	if rec.BookingKey != nil {
		for _, existing := range s.requests {
			if existing.BookingKey != nil && *existing.BookingKey == *rec.BookingKey {
				return "", errs.ErrDuplicateBooking
			}
		}
	}
	if rec.ID == "" {
		rec.ID = s.nextID("req")
	}
	rec.CreatedAt = time.Now()
	for idx := range tasks {
		tasks[idx].ID = s.nextID("task")
		tasks[idx].RequestID = rec.ID
	}
	rec.ApprovalRecords = tasks
	s.requests[rec.ID] = &rec
	if s.audit != nil {
		entry.RequestID = rec.ID
		if _, err := s.audit.Append(entry); err != nil {
			return "", err
		}
	}
	return rec.ID, nil
}

func (s *fakeRequestStore) GetByID(id string) (*dbmodels.Request, error) {
	rec, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.ApprovalRecords = append([]dbmodels.ApprovalRecord{}, rec.ApprovalRecords...)
	return &cp, nil
}

func (s *fakeRequestStore) Update(id string, updMap map[string]interface{}) error {
	rec, ok := s.requests[id]
	if !ok {
		return errors.New("заявка не найдена")
	}
	if state, exist := updMap["State"]; exist {
		rec.State = state.(models.RequestState)
	}
	return nil
}

func (s *fakeRequestStore) UpdateApproval(id string, updMap map[string]interface{}) error {
	for _, rec := range s.requests {
		for idx := range rec.ApprovalRecords {
			if rec.ApprovalRecords[idx].ID != id {
				continue
			}
			if decision, exist := updMap["Decision"]; exist {
				rec.ApprovalRecords[idx].Decision = decision.(models.ApprovalDecision)
			}
			if decidedAt, exist := updMap["DecidedAt"]; exist {
				rec.ApprovalRecords[idx].DecidedAt = decidedAt.(*time.Time)
			}
			if comment, exist := updMap["Comment"]; exist {
				rec.ApprovalRecords[idx].Comment = comment.(string)
			}
			return nil
		}
	}
	return errors.New("запись согласования не найдена")
}

func (s *fakeRequestStore) ExistsByBookingKey(bookingKey string) (bool, error) {
	for _, rec := range s.requests {
		if rec.BookingKey != nil && *rec.BookingKey == bookingKey {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRequestStore) ListPendingByApprover(approverID string) ([]dbmodels.Request, error) {
	list := []dbmodels.Request{}
	for _, rec := range s.requests {
		if rec.State != models.RequestStatePending {
			continue
		}
		for _, task := range rec.ApprovalRecords {
			if task.ApproverID == approverID && task.Decision == models.DecisionPending {
				list = append(list, *rec)
				break
			}
		}
	}
	return list, nil
}

func (s *fakeRequestStore) ListByEmployee(employeeID string) ([]dbmodels.Request, error) {
	list := []dbmodels.Request{}
	for _, rec := range s.requests {
		if rec.EmployeeID == employeeID {
			list = append(list, *rec)
		}
	}
	return list, nil
}

type fakeEmployeeStore struct {
	employees map[string]*dbmodels.Employee
}

func (s *fakeEmployeeStore) Create(rec dbmodels.Employee) (string, error) {
	s.employees[rec.ID] = &rec
	return rec.ID, nil
}

func (s *fakeEmployeeStore) GetByID(id string) (*dbmodels.Employee, error) {
	rec, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeEmployeeStore) Update(id string, updMap map[string]interface{}) error {
	return nil
}

func (s *fakeEmployeeStore) Deactivate(id string) error {
	if rec, ok := s.employees[id]; ok {
		rec.IsActive = false
	}
	return nil
}

func (s *fakeEmployeeStore) List() ([]dbmodels.Employee, error) {
	list := []dbmodels.Employee{}
	for _, rec := range s.employees {
		list = append(list, *rec)
	}
	return list, nil
}

type fakeAuditStore struct {
	entries []dbmodels.AuditEntry
	seq     int
}

func (s *fakeAuditStore) Append(rec dbmodels.AuditEntry) (string, error) {
	s.seq++
	rec.ID = fmt.Sprintf("audit-%d", s.seq)
	rec.CreatedAt = time.Now()
	s.entries = append(s.entries, rec)
	return rec.ID, nil
}

func (s *fakeAuditStore) List(requestID string) ([]dbmodels.AuditEntry, error) {
	list := []dbmodels.AuditEntry{}
	for _, rec := range s.entries {
		if rec.RequestID == requestID {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (s *fakeAuditStore) actions(requestID string) []models.AuditAction {
	result := []models.AuditAction{}
	for _, rec := range s.entries {
		if rec.RequestID == requestID {
			result = append(result, rec.Action)
		}
	}
	return result
}

type fakeReservation struct {
	days  int
	state models.ReservationState
}

type fakeEntitlement struct {
	entitled     int
	pending      int
	consumed     int
	reservations map[string]*fakeReservation
	seq          int
}

func newFakeEntitlement(entitled int) *fakeEntitlement {
	return &fakeEntitlement{
		entitled:     entitled,
		reservations: map[string]*fakeReservation{},
	}
}

func (f *fakeEntitlement) Reserve(employeeID, requestID string, days int) (string, error) {
	if f.entitled-f.pending-f.consumed < days {
		return "", errs.ErrInsufficientBalance
	}
	f.pending += days
	f.seq++
	id := fmt.Sprintf("res-%d", f.seq)
	f.reservations[id] = &fakeReservation{days: days, state: models.ReservationHeld}
	return id, nil
}

func (f *fakeEntitlement) Commit(reservationID string) error {
	return f.Transition(reservationID, models.ReservationCommitted)
}

func (f *fakeEntitlement) Release(reservationID string) error {
	return f.Transition(reservationID, models.ReservationReleased)
}

func (f *fakeEntitlement) Transition(reservationID string, to models.ReservationState) error {
	res, ok := f.reservations[reservationID]
	if !ok {
		return errors.New("резервация не найдена")
	}
	if res.state == to {
		return nil
	}
	switch res.state {
	case models.ReservationHeld:
		f.pending -= res.days
	case models.ReservationCommitted:
		f.consumed -= res.days
	case models.ReservationReleased:
		if f.entitled-f.pending-f.consumed < res.days {
			return errs.ErrInsufficientBalance
		}
	}
	switch to {
	case models.ReservationHeld:
		f.pending += res.days
	case models.ReservationCommitted:
		f.consumed += res.days
	}
	res.state = to
	return nil
}

func (f *fakeEntitlement) Renew(employeeID string) error {
	return nil
}

type fakeHierarchy struct {
	ancestors map[string]string // employeeID -> managerID
}

func (f *fakeHierarchy) IsAncestor(managerID, employeeID string) (bool, error) {
	return f.ancestors[employeeID] == managerID, nil
}

func (f *fakeHierarchy) TransitiveSubordinates(managerID string) (map[string]struct{}, error) {
	result := map[string]struct{}{}
	for employeeID, manager := range f.ancestors {
		if manager == managerID {
			result[employeeID] = struct{}{}
		}
	}
	return result, nil
}

type fakePanel struct {
	ids []string
	err error
}

func (f *fakePanel) SelectPanel(kind models.RequestKind) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

func (f *fakePanel) Appoint(employeeID string) error { return nil }

func (f *fakePanel) Revoke(employeeID string) error { return nil }

func (f *fakePanel) ListActive() ([]employeeapimodels.ApproverView, error) { return nil, nil }

type fakeNotify struct {
	created   int
	finalized int
	cancelled int
}

func (f *fakeNotify) RequestCreated(rec dbmodels.Request, approverIDs []string) { f.created++ }

func (f *fakeNotify) RequestFinalized(rec dbmodels.Request, newState models.RequestState) {
	f.finalized++
}

func (f *fakeNotify) RequestCancelled(rec dbmodels.Request) { f.cancelled++ }

type testEnv struct {
	handler     impl
	store       *fakeRequestStore
	audit       *fakeAuditStore
	entitlement *fakeEntitlement
	hierarchy   *fakeHierarchy
	panel       *fakePanel
	notify      *fakeNotify
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conf := new(config.Configuration)
	conf.Workflow.PanelSize = 3
	conf.Workflow.AmendWindowHours = 24
	config.Conf = conf

	employees := &fakeEmployeeStore{employees: map[string]*dbmodels.Employee{}}
	for _, emp := range []dbmodels.Employee{
		{BaseModel: dbmodels.BaseModel{ID: "emp-1"}, FirstName: "Ana", LastName: "Lopez", Role: models.UserRoleEmployee, IsActive: true},
		{BaseModel: dbmodels.BaseModel{ID: "mgr-1"}, FirstName: "Luis", LastName: "Prado", Role: models.UserRoleManager, IsActive: true},
		{BaseModel: dbmodels.BaseModel{ID: "adm-1"}, FirstName: "Rosa", LastName: "Marin", Role: models.UserRoleAdmin, IsActive: true},
		{BaseModel: dbmodels.BaseModel{ID: "apr-1"}, FirstName: "Ivan", LastName: "Gomez", Role: models.UserRoleManager, IsActive: true},
		{BaseModel: dbmodels.BaseModel{ID: "apr-2"}, FirstName: "Sara", LastName: "Ruiz", Role: models.UserRoleManager, IsActive: true},
		{BaseModel: dbmodels.BaseModel{ID: "apr-3"}, FirstName: "Omar", LastName: "Vega", Role: models.UserRoleManager, IsActive: true},
	} {
		rec := emp
		employees.employees[rec.ID] = &rec
	}

	env := &testEnv{
		store:       newFakeRequestStore(),
		audit:       &fakeAuditStore{},
		entitlement: newFakeEntitlement(15),
		hierarchy:   &fakeHierarchy{ancestors: map[string]string{"emp-1": "mgr-1"}},
		panel:       &fakePanel{ids: []string{"apr-1", "apr-2", "apr-3"}},
		notify:      &fakeNotify{},
	}
	env.store.audit = env.audit
	env.handler = impl{
		store:         env.store,
		employeeStore: employees,
		auditStore:    env.audit,
		entitlement:   env.entitlement,
		hierarchy:     env.hierarchy,
		panel:         env.panel,
		notify:        env.notify,
	}
	return env
}

func vacationData(employeeID string, days int) requestapimodels.RequestCreateData {
	return requestapimodels.RequestCreateData{
		EmployeeID: employeeID,
		Kind:       string(models.RequestKindVacation),
		StartDate:  "2026-09-07",
		EndDate:    "2026-09-13",
		Quantity:   days,
		Reason:     "отпуск у моря",
	}
}

func TestCreate(t *testing.T) {
	t.Run("сотрудник создаёт заявку на себя", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		rec := env.store.requests[id]
		require.NotNil(t, rec)
		require.Equal(t, models.RequestStatePending, rec.State)
		require.Len(t, rec.ApprovalRecords, 3)
		for idx, task := range rec.ApprovalRecords {
			require.Equal(t, idx+1, task.Sequence)
			require.Equal(t, models.DecisionPending, task.Decision)
		}
		require.NotNil(t, rec.ReservationID)
		require.Equal(t, 7, env.entitlement.pending)
		require.Equal(t, []models.AuditAction{models.AuditRequestCreated}, env.audit.actions(id))
		require.Equal(t, 1, env.notify.created)
	})

	t.Run("отгул не резервирует дни отпуска", func(t *testing.T) {
		env := newTestEnv(t)
		data := vacationData("emp-1", 1)
		data.Kind = string(models.RequestKindLeave)
		id, err := env.handler.Create("emp-1", data)
		require.NoError(t, err)
		require.Equal(t, 0, env.entitlement.pending)
		require.Nil(t, env.store.requests[id].ReservationID)
	})

	t.Run("недостаточно дней", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Create("emp-1", vacationData("emp-1", 20))
		require.ErrorIs(t, err, errs.ErrInsufficientBalance)
		require.Empty(t, env.store.requests)
	})

	t.Run("пустая панель согласующих", func(t *testing.T) {
		env := newTestEnv(t)
		env.panel.err = errs.ErrNoPanel
		_, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.ErrorIs(t, err, errs.ErrNoPanel)
		require.Equal(t, 0, env.entitlement.pending)
	})

	t.Run("руководитель создаёт заявку на подчинённого", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("mgr-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		require.Equal(t, "mgr-1", env.store.requests[id].CreatedBy)
	})

	t.Run("администратор создаёт заявку на любого", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Create("adm-1", vacationData("emp-1", 7))
		require.NoError(t, err)
	})

	t.Run("посторонний не может создать заявку на другого", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Create("apr-1", vacationData("emp-1", 7))
		require.ErrorIs(t, err, errs.ErrNotAuthorized)
	})

	t.Run("сбой создания освобождает резервацию", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.failNext = errors.New("обрыв соединения")
		_, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.Error(t, err)
		require.Equal(t, 0, env.entitlement.pending)
	})
}

func TestDecideConsensus(t *testing.T) {
	// полный перебор решений панели из трёх: единственное вето отклоняет,
	// согласование требует единогласия
	decisions := []models.ApprovalDecision{models.DecisionApproved, models.DecisionRejected}
	for _, d1 := range decisions {
		for _, d2 := range decisions {
			for _, d3 := range decisions {
				combo := []models.ApprovalDecision{d1, d2, d3}
				name := fmt.Sprintf("%v_%v_%v", d1, d2, d3)
				t.Run(name, func(t *testing.T) {
					env := newTestEnv(t)
					id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
					require.NoError(t, err)

					expected := models.RequestStateApproved
					for _, d := range combo {
						if d == models.DecisionRejected {
							expected = models.RequestStateRejected
							break
						}
					}

					var state models.RequestState
					approvers := []string{"apr-1", "apr-2", "apr-3"}
					for idx, decision := range combo {
						state, err = env.handler.Decide(id, approvers[idx], decision, "")
						if state.IsTerminal() {
							// после финализации оставшиеся решения уже не принимаются
							require.NoError(t, err)
							break
						}
						require.NoError(t, err)
					}
					require.Equal(t, expected, state)
					require.Equal(t, expected, env.store.requests[id].State)

					if expected == models.RequestStateApproved {
						require.Equal(t, 7, env.entitlement.consumed)
						require.Equal(t, 0, env.entitlement.pending)
					} else {
						require.Equal(t, 0, env.entitlement.consumed)
						require.Equal(t, 0, env.entitlement.pending)
					}
				})
			}
		}
	}
}

func TestDecide(t *testing.T) {
	t.Run("отказ оставляет прочие записи нетронутыми", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)

		state, err := env.handler.Decide(id, "apr-2", models.DecisionRejected, "пересекается с релизом")
		require.NoError(t, err)
		require.Equal(t, models.RequestStateRejected, state)

		rec := env.store.requests[id]
		for _, task := range rec.ApprovalRecords {
			if task.ApproverID == "apr-2" {
				require.Equal(t, models.DecisionRejected, task.Decision)
				require.NotNil(t, task.DecidedAt)
			} else {
				require.Equal(t, models.DecisionPending, task.Decision)
			}
		}
		require.Equal(t, 0, env.entitlement.pending)
		require.Contains(t, env.audit.actions(id), models.AuditRequestRejected)
		require.Equal(t, 1, env.notify.finalized)
	})

	t.Run("не согласующий", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "mgr-1", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrNotApprover)
	})

	t.Run("повторное решение", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrAlreadyDecided)
	})

	t.Run("решение по финализированной заявке", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionRejected, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-2", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrNotPending)
	})

	t.Run("решение после отмены", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		require.NoError(t, env.handler.Cancel(id, "emp-1", "передумала"))
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrNotPending)
	})

	t.Run("заявка не найдена", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.Decide("missing", "apr-1", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrRequestNotFound)
	})

	t.Run("отказ освобождает дни для новой заявки", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionRejected, "")
		require.NoError(t, err)

		// 15 дней в окне, 7 освобождены отказом: новая заявка на 10 проходит
		_, err = env.handler.Create("emp-1", vacationData("emp-1", 10))
		require.NoError(t, err)
		require.Equal(t, 10, env.entitlement.pending)
	})
}

func approveAll(t *testing.T, env *testEnv, id string) {
	t.Helper()
	for _, approverID := range []string{"apr-1", "apr-2", "apr-3"} {
		_, err := env.handler.Decide(id, approverID, models.DecisionApproved, "")
		require.NoError(t, err)
	}
}

func TestAmend(t *testing.T) {
	t.Run("корректировка после финализации пересчитывает консенсус", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		approveAll(t, env, id)
		require.Equal(t, 7, env.entitlement.consumed)

		state, err := env.handler.Amend(id, "apr-2", models.DecisionRejected, "ошибся")
		require.NoError(t, err)
		require.Equal(t, models.RequestStateRejected, state)
		require.Equal(t, models.RequestStateRejected, env.store.requests[id].State)
		require.Equal(t, 0, env.entitlement.consumed)
		require.Contains(t, env.audit.actions(id), models.AuditDecisionAmended)
	})

	t.Run("корректировка отказа восстанавливает согласование", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-2", models.DecisionApproved, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-3", models.DecisionRejected, "")
		require.NoError(t, err)
		require.Equal(t, models.RequestStateRejected, env.store.requests[id].State)

		state, err := env.handler.Amend(id, "apr-3", models.DecisionApproved, "убедили")
		require.NoError(t, err)
		require.Equal(t, models.RequestStateApproved, state)
		require.Equal(t, 7, env.entitlement.consumed)
	})

	t.Run("недостаточно дней для восстановления", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-2", models.DecisionApproved, "")
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-3", models.DecisionRejected, "")
		require.NoError(t, err)

		// освободившиеся дни заняты другой заявкой
		otherID, err := env.handler.Create("emp-1", vacationData("emp-1", 12))
		require.NoError(t, err)
		approveAll(t, env, otherID)

		_, err = env.handler.Amend(id, "apr-3", models.DecisionApproved, "")
		require.ErrorIs(t, err, errs.ErrInsufficientBalance)
		require.Equal(t, models.RequestStateRejected, env.store.requests[id].State)
	})

	t.Run("окно корректировки истекло", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)

		rec := env.store.requests[id]
		stale := time.Now().Add(-25 * time.Hour)
		rec.ApprovalRecords[0].DecidedAt = &stale

		_, err = env.handler.Amend(id, "apr-1", models.DecisionRejected, "")
		require.ErrorIs(t, err, errs.ErrAmendWindowExpired)
	})

	t.Run("нечего корректировать", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Amend(id, "apr-1", models.DecisionRejected, "")
		require.ErrorIs(t, err, errs.ErrNotDecided)
	})

	t.Run("корректировка по отменённой заявке", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		require.NoError(t, env.handler.Cancel(id, "emp-1", ""))
		_, err = env.handler.Amend(id, "apr-1", models.DecisionRejected, "")
		require.ErrorIs(t, err, errs.ErrNotPending)
	})

	t.Run("то же решение повторно", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		state, err := env.handler.Amend(id, "apr-1", models.DecisionApproved, "")
		require.NoError(t, err)
		require.Equal(t, models.RequestStatePending, state)
	})
}

func TestCancel(t *testing.T) {
	t.Run("отмена ожидающей заявки автором", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		require.NoError(t, env.handler.Cancel(id, "emp-1", "планы изменились"))

		rec := env.store.requests[id]
		require.Equal(t, models.RequestStateCancelled, rec.State)
		require.Equal(t, 0, env.entitlement.pending)
		// записи согласования не переписываются, они теряют силу вместе с заявкой
		for _, task := range rec.ApprovalRecords {
			require.Equal(t, models.DecisionPending, task.Decision)
		}
		require.Contains(t, env.audit.actions(id), models.AuditRequestCancelled)
		require.Equal(t, 1, env.notify.cancelled)
	})

	t.Run("отмена согласованного отпуска возвращает дни", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		approveAll(t, env, id)
		require.Equal(t, 7, env.entitlement.consumed)

		require.NoError(t, env.handler.Cancel(id, "emp-1", "болезнь"))
		require.Equal(t, 0, env.entitlement.consumed)
		require.Equal(t, 0, env.entitlement.pending)
	})

	t.Run("отклонённую заявку не отменить", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		_, err = env.handler.Decide(id, "apr-1", models.DecisionRejected, "")
		require.NoError(t, err)
		err = env.handler.Cancel(id, "emp-1", "")
		require.ErrorIs(t, err, errs.ErrNotPending)
	})

	t.Run("посторонний не может отменить", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		err = env.handler.Cancel(id, "apr-1", "")
		require.ErrorIs(t, err, errs.ErrNotAuthorized)
	})

	t.Run("руководитель может отменить заявку подчинённого", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
		require.NoError(t, err)
		require.NoError(t, env.handler.Cancel(id, "mgr-1", "производственная необходимость"))
	})
}

func TestCreateAuto(t *testing.T) {
	period := requestapimodels.Period{
		Start: time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 11, 26, 0, 0, 0, 0, time.UTC),
	}

	t.Run("создание от имени системы", func(t *testing.T) {
		env := newTestEnv(t)
		id, err := env.handler.CreateAuto("emp-1", period, 7, "emp-1:2026-11-27")
		require.NoError(t, err)
		rec := env.store.requests[id]
		require.Equal(t, models.SystemActorID, rec.CreatedBy)
		require.Equal(t, models.RequestKindVacation, rec.Kind)
		require.NotNil(t, rec.BookingKey)
		require.Equal(t, 7, env.entitlement.pending)
	})

	t.Run("повторный ключ бронирования", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.handler.CreateAuto("emp-1", period, 7, "emp-1:2026-11-27")
		require.NoError(t, err)
		_, err = env.handler.CreateAuto("emp-1", period, 7, "emp-1:2026-11-27")
		require.ErrorIs(t, err, errs.ErrDuplicateBooking)
		require.Equal(t, 7, env.entitlement.pending)
	})
}

func TestGetPendingFor(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
	require.NoError(t, err)

	list, err := env.handler.GetPendingFor("apr-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, id, list[0].ID)

	_, err = env.handler.Decide(id, "apr-1", models.DecisionApproved, "")
	require.NoError(t, err)
	list, err = env.handler.GetPendingFor("apr-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.handler.Create("emp-1", vacationData("emp-1", 7))
	require.NoError(t, err)
	_, err = env.handler.Decide(id, "apr-1", models.DecisionRejected, "не сезон")
	require.NoError(t, err)

	history, err := env.handler.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, models.AuditRequestCreated, history[0].Action)
	require.Equal(t, models.AuditDecisionRecorded, history[1].Action)
	require.Equal(t, models.AuditRequestRejected, history[2].Action)

	_, err = env.handler.History("missing")
	require.ErrorIs(t, err, errs.ErrRequestNotFound)
}
