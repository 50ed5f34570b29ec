package initializers

import (
	"context"
	"time"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/fiberlog"
	approvershandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/approvers"
	autobookingworker "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/autobooking"
	employeehandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/employee"
	entitlementhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement"
	entitlementrenewworker "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/entitlement/renew-worker"
	hierarchyhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/hierarchy"
	notifyhandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/notify"
	requesthandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/request"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	hierarchyhandler.NewHandler()
	entitlementhandler.NewHandler()
	approvershandler.NewHandler()
	notifyhandler.NewHandler()
	employeehandler.NewHandler()
	requesthandler.NewHandler()
	go initWorkers(ctx)
}

// запускаем с промежутком в 10 сек чтоб размыть нагрузку
func initWorkers(ctx context.Context) {
	// Задача переоткрытия истёкших окон начисления отпуска
	entitlementrenewworker.StartWorker(ctx)

	if makeTimeGap(ctx) {
		// Задача автобронирования отпуска перед сгоранием дней
		autobookingworker.StartWorker(ctx)
	}
}

func makeTimeGap(ctx context.Context) (canRun bool) {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second * 10):
		return true
	}
}
