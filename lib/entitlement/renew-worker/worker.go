package entitlementrenewworker

import (
	"context"
	"time"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
	entitlementhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement"
	entitlementstore "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement/store"
	baseworker "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/base-worker"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/utils/helpers"
)

func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl:         *baseworker.NewInstance("EntitlementRenewWorker", 30*time.Second, 24*time.Hour),
		entitlementStore: entitlementstore.NewInstance(db.DB),
		entitlement:      entitlementhandler.Instance,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	entitlementStore entitlementstore.Provider
	entitlement      entitlementhandler.Provider
}

// handle переоткрывает окна начисления, срок которых истёк.
func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.entitlementStore.ListExpiring(time.Now())
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка истёкших окон начисления")
		return
	}
	for _, ledger := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		err = i.entitlement.Renew(ledger.EmployeeID)
		if err != nil {
			logger.
				WithError(err).
				WithField("employee_id", ledger.EmployeeID).
				Error("ошибка переоткрытия окна начисления")
			continue
		}
	}
}
