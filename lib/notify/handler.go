package notifyhandler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	employeestore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee/store"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/smtp"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models"
	dbmodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/db"
)

// Уведомления отправляются в фоне и не влияют на результат операции:
// сбой доставки логируется и не откатывает переход заявки.
type Provider interface {
	RequestCreated(rec dbmodels.Request, approverIDs []string)
	RequestFinalized(rec dbmodels.Request, newState models.RequestState)
	RequestCancelled(rec dbmodels.Request)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		employeeStore: employeestore.NewInstance(db.DB),
	}
}

type impl struct {
	employeeStore employeestore.Provider
}

func (i impl) GetLogger(requestID string) *log.Entry {
	return log.WithField("request_id", requestID)
}

func (i impl) RequestCreated(rec dbmodels.Request, approverIDs []string) {
	go func() {
		subject := "Новая заявка на согласование"
		message := fmt.Sprintf("Заявка %v (%v) ожидает вашего решения.", rec.ID, rec.Kind)
		for _, approverID := range approverIDs {
			i.sendTo(rec.ID, approverID, subject, message)
		}
	}()
}

func (i impl) RequestFinalized(rec dbmodels.Request, newState models.RequestState) {
	go func() {
		subject := "Заявка рассмотрена"
		message := fmt.Sprintf("Заявка %v переведена в статус %v.", rec.ID, newState)
		i.sendTo(rec.ID, rec.EmployeeID, subject, message)
	}()
}

func (i impl) RequestCancelled(rec dbmodels.Request) {
	go func() {
		subject := "Заявка отменена"
		message := fmt.Sprintf("Заявка %v отменена.", rec.ID)
		i.sendTo(rec.ID, rec.EmployeeID, subject, message)
	}()
}

func (i impl) sendTo(requestID, employeeID, subject, message string) {
	logger := i.GetLogger(requestID).WithField("employee_id", employeeID)
	emp, err := i.employeeStore.GetByID(employeeID)
	if err != nil || emp == nil || emp.Email == "" {
		logger.Warn("уведомление не отправлено: не найден адрес сотрудника")
		return
	}
	if err := smtp.Instance.SendEMail(emp.Email, subject, message); err != nil {
		logger.WithError(err).Error("ошибка отправки уведомления")
	}
}
