package employeehandler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	employeestore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee/store"
	entitlementhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement"
	entitlementstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	hierarchyhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/hierarchy"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	employeeapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/employee"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

type Provider interface {
	Create(data employeeapimodels.EmployeeData) (id string, err error)
	Get(id string) (employeeapimodels.EmployeeView, error)
	Update(id string, data employeeapimodels.EmployeeData) error
	Deactivate(id string) error
	List() ([]employeeapimodels.EmployeeView, error)
	// Subordinates — все прямые и транзитивные подчинённые руководителя.
	Subordinates(managerID string) ([]employeeapimodels.EmployeeView, error)
	Entitlement(employeeID string) (employeeapimodels.EntitlementView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:            employeestore.NewInstance(db.DB),
		entitlementStore: entitlementstore.NewInstance(db.DB),
		entitlement:      entitlementhandler.Instance,
		hierarchy:        hierarchyhandler.Instance,
	}
}

type impl struct {
	store            employeestore.Provider
	entitlementStore entitlementstore.Provider
	entitlement      entitlementhandler.Provider
	hierarchy        hierarchyhandler.Provider
}

func (i impl) GetLogger(employeeID string) *log.Entry {
	return log.WithField("employee_id", employeeID)
}

func (i impl) Create(data employeeapimodels.EmployeeData) (string, error) {
	if err := data.Validate(); err != nil {
		return "", err
	}
	rec, err := i.toRec(data)
	if err != nil {
		return "", err
	}
	rec.IsActive = true
	id, err := i.store.Create(rec)
	if err != nil {
		return "", err
	}
	// первое окно начисления открывается сразу при приёме
	if err = i.entitlement.Renew(id); err != nil {
		i.GetLogger(id).WithError(err).Error("не удалось открыть окно начисления для нового сотрудника")
	}
	i.GetLogger(id).Info("создан сотрудник")
	return id, nil
}

func (i impl) Get(id string) (employeeapimodels.EmployeeView, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return employeeapimodels.EmployeeView{}, err
	}
	return employeeapimodels.EmployeeConvert(*rec), nil
}

func (i impl) Update(id string, data employeeapimodels.EmployeeData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if _, err := i.getRec(id); err != nil {
		return err
	}
	hiredAt, err := data.GetHiredAt()
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"FirstName":    data.FirstName,
		"LastName":     data.LastName,
		"Email":        data.Email,
		"DepartmentID": data.DepartmentID,
		"JobTitle":     data.JobTitle,
		"Role":         models.UserRole(data.Role),
		"HiredAt":      hiredAt,
	}
	if data.SupervisorID != "" {
		if err = i.checkSupervisor(id, data.SupervisorID); err != nil {
			return err
		}
		updMap["SupervisorID"] = data.SupervisorID
	} else {
		updMap["SupervisorID"] = nil
	}
	return i.store.Update(id, updMap)
}

func (i impl) Deactivate(id string) error {
	if _, err := i.getRec(id); err != nil {
		return err
	}
	err := i.store.Deactivate(id)
	if err != nil {
		return err
	}
	i.GetLogger(id).Info("сотрудник деактивирован")
	return nil
}

func (i impl) List() ([]employeeapimodels.EmployeeView, error) {
	list, err := i.store.List()
	if err != nil {
		return nil, err
	}
	result := make([]employeeapimodels.EmployeeView, 0, len(list))
	for _, rec := range list {
		result = append(result, employeeapimodels.EmployeeConvert(rec))
	}
	return result, nil
}

func (i impl) Subordinates(managerID string) ([]employeeapimodels.EmployeeView, error) {
	if _, err := i.getRec(managerID); err != nil {
		return nil, err
	}
	ids, err := i.hierarchy.TransitiveSubordinates(managerID)
	if err != nil {
		return nil, err
	}
	list, err := i.store.List()
	if err != nil {
		return nil, err
	}
	result := make([]employeeapimodels.EmployeeView, 0, len(ids))
	for _, rec := range list {
		if _, ok := ids[rec.ID]; ok {
			result = append(result, employeeapimodels.EmployeeConvert(rec))
		}
	}
	return result, nil
}

func (i impl) Entitlement(employeeID string) (employeeapimodels.EntitlementView, error) {
	if _, err := i.getRec(employeeID); err != nil {
		return employeeapimodels.EntitlementView{}, err
	}
	ledger, err := i.entitlementStore.GetByEmployee(employeeID)
	if err != nil {
		return employeeapimodels.EntitlementView{}, err
	}
	if ledger == nil {
		return employeeapimodels.EntitlementView{}, errs.ErrNoLedger
	}
	return employeeapimodels.EntitlementConvert(*ledger), nil
}

func (i impl) getRec(id string) (*dbmodels.Employee, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errs.ErrEmployeeNotFound
	}
	return rec, nil
}

func (i impl) checkSupervisor(employeeID, supervisorID string) error {
	if supervisorID == employeeID {
		return errs.ErrNotAuthorized
	}
	if _, err := i.getRec(supervisorID); err != nil {
		return err
	}
	// назначение подчинённого руководителем замкнуло бы граф
	isSubordinate, err := i.hierarchy.IsAncestor(employeeID, supervisorID)
	if err != nil {
		return err
	}
	if isSubordinate {
		return errors.New("назначение создаёт цикл в иерархии руководителей")
	}
	return nil
}

func (i impl) toRec(data employeeapimodels.EmployeeData) (dbmodels.Employee, error) {
	hiredAt, err := data.GetHiredAt()
	if err != nil {
		return dbmodels.Employee{}, err
	}
	rec := dbmodels.Employee{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		DepartmentID: data.DepartmentID,
		JobTitle:     data.JobTitle,
		Role:         models.UserRole(data.Role),
		HiredAt:      hiredAt,
	}
	if data.SupervisorID != "" {
		if _, err = i.getRec(data.SupervisorID); err != nil {
			return dbmodels.Employee{}, err
		}
		supervisorID := data.SupervisorID
		rec.SupervisorID = &supervisorID
	}
	return rec, nil
}
