package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-market/apps/api/echo"
	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
	logsvc "github.com/trezcool/masomo-market/services/logger"
	"github.com/trezcool/masomo-market/services/realtime"
	menucache "github.com/trezcool/masomo-market/storage/cache"
	"github.com/trezcool/masomo-market/storage/database"
	inmemdb "github.com/trezcool/masomo-market/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-market/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are backed by sqlx for the SQL engines and by inmemdb otherwise.
type Repositories struct {
	dig.Out
	Menu         menu.Repository
	User         user.Repository
	Notification notification.Repository
}

// Closer releases the resources opened by the container.
type Closer func() error

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// newDB returns a nil *sqlx.DB for the inmem engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == database.EngineInMem {
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(db *sqlx.DB) Repositories {
	if db == nil {
		mem := inmemdb.NewDB()
		return Repositories{
			Menu:         inmemdb.NewMenuRepository(mem),
			User:         inmemdb.NewUserRepository(mem),
			Notification: inmemdb.NewNotificationRepository(mem),
		}
	}
	return Repositories{
		Menu:         sqlxrepos.NewMenuRepository(db),
		User:         sqlxrepos.NewUserRepository(db),
		Notification: sqlxrepos.NewNotificationRepository(db),
	}
}

// newRedisClient returns nil when neither the menu cache nor the realtime publisher use redis.
func newRedisClient(conf *core.Config) redis.UniversalClient {
	if conf.Menu.CacheDriver != menucache.DriverRedis && conf.Realtime.Driver != realtime.DriverRedis {
		return nil
	}
	return menucache.NewRedisClient(conf)
}

func newCloser(db *sqlx.DB, rdb redis.UniversalClient) Closer {
	return func() error {
		var errs []string
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				errs = append(errs, errors.Wrap(err, "closing redis").Error())
			}
		}
		if db != nil {
			if err := db.Close(); err != nil {
				errs = append(errs, errors.Wrap(err, "closing database").Error())
			}
		}
		if len(errs) > 0 {
			return errors.Errorf("%v", errs)
		}
		return nil
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newMenuService(
	conf *core.Config,
	repo menu.Repository,
	cache menu.Cache,
	publisher menu.RefreshPublisher,
	reg *prometheus.Registry,
	logger core.Logger,
) *menu.Service {
	return menu.NewService(
		repo, cache, logger,
		menu.WithTTL(conf.Menu.CacheTTL),
		menu.WithBuildTimeout(conf.Menu.BuildTimeout),
		menu.WithMetrics(menu.NewMetrics(reg)),
		menu.WithPublisher(publisher),
	)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	menuSvc *menu.Service,
	notificationSvc *notification.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		MenuSvc:         menuSvc,
		NotificationSvc: notificationSvc,
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  conf.TestMode,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newRedisClient))
	must(c.Provide(newCloser))
	must(c.Provide(menucache.New))
	must(c.Provide(realtime.New))
	must(c.Provide(newRegistry))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newMenuService))
	must(c.Provide(func(svc *menu.Service) notification.Invalidator { return svc }))
	must(c.Provide(notification.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
