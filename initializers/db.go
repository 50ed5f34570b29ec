package initializers

import (
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/config"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/db"
)

func InitDBConnection() {
	err := db.Connect(config.Conf.Database.Host, config.Conf.Database.Port, config.Conf.Database.Name,
		config.Conf.Database.User, config.Conf.Database.Password, *config.Conf.Database.DebugMode, *config.Conf.Database.MigrateOnStart)
	if err != nil {
		panic(err.Error())
	}
}
