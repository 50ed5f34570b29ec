package approvershandler

import (
	log "github.com/sirupsen/logrus"

	approverstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/approvers/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	employeeapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/employee"
)

type Provider interface {
	// SelectPanel возвращает упорядоченный список согласующих для новой
	// заявки: самые давние назначения первыми, не больше настроенного
	// размера панели. Реестр читается заново на каждый вызов.
	SelectPanel(kind models.RequestKind) (approverIDs []string, err error)
	Appoint(employeeID string) error
	Revoke(employeeID string) error
	ListActive() ([]employeeapimodels.ApproverView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: approverstore.NewInstance(db.DB),
	}
}

type impl struct {
	store approverstore.Provider
}

func (i impl) SelectPanel(kind models.RequestKind) ([]string, error) {
	list, err := i.store.ListActive()
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errs.ErrNoPanel
	}
	panelSize := config.Conf.Workflow.PanelSize
	if len(list) < panelSize {
		// работаем с неполной панелью: правило консенсуса оценивается по
		// фактически назначенным записям, а не по настроенному размеру
		log.
			WithField("kind", kind).
			WithField("active_approvers", len(list)).
			WithField("panel_size", panelSize).
			Warn("активных согласующих меньше размера панели")
		panelSize = len(list)
	}
	result := make([]string, 0, panelSize)
	for _, rec := range list[:panelSize] {
		result = append(result, rec.EmployeeID)
	}
	return result, nil
}

func (i impl) Appoint(employeeID string) error {
	_, err := i.store.Appoint(employeeID)
	if err != nil {
		return err
	}
	log.
		WithField("employee_id", employeeID).
		Info("сотрудник назначен согласующим")
	return nil
}

func (i impl) Revoke(employeeID string) error {
	err := i.store.Revoke(employeeID)
	if err != nil {
		return err
	}
	log.
		WithField("employee_id", employeeID).
		Info("назначение согласующего отозвано")
	return nil
}

func (i impl) ListActive() ([]employeeapimodels.ApproverView, error) {
	list, err := i.store.ListActive()
	if err != nil {
		return nil, err
	}
	result := make([]employeeapimodels.ApproverView, 0, len(list))
	for _, rec := range list {
		result = append(result, employeeapimodels.ApproverConvert(rec))
	}
	return result, nil
}
