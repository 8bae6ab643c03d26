package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/notification"
	logsvc "github.com/trezcool/masomo-market/services/logger"
	"github.com/trezcool/masomo-market/services/realtime"
	menucache "github.com/trezcool/masomo-market/storage/cache"
	"github.com/trezcool/masomo-market/storage/database"
	sqlxrepos "github.com/trezcool/masomo-market/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	if conf.Database.Engine == database.EngineInMem {
		logger.Fatal(fmt.Sprintf("admin: the %q engine keeps no data between runs", conf.Database.Engine))
	}
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()

	// menus cached in this process are invisible to the API, so share redis when configured
	var rdb redis.UniversalClient
	if conf.Menu.CacheDriver == menucache.DriverRedis || conf.Realtime.Driver == realtime.DriverRedis {
		rdb = menucache.NewRedisClient(conf)
		defer rdb.Close()
	}
	cache, err := menucache.New(conf, rdb)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up menu cache: %v", err), err)
	}
	publisher, err := realtime.New(conf, rdb)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up realtime publisher: %v", err), err)
	}

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	usrRepo := sqlxrepos.NewUserRepository(db)
	menuSvc := menu.NewService(sqlxrepos.NewMenuRepository(db), cache, logger, menu.WithPublisher(publisher))
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), usrRepo, menuSvc, validate, logger)

	// start CLI
	cli := commandLine{
		conf:        conf,
		db:          db,
		usrRepo:     usrRepo,
		invalidator: menuSvc,
		notifSvc:    notifSvc,
		out:         os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		db.Close()
		os.Exit(1)
	}
}
