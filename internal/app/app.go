package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/config"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	store     repository.Store
	gormDB    *gorm.DB
	catalog   *inventory.Catalog
	ledger    *inventory.Ledger
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ InventoryProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() repository.Store {
	return a.store
}

func (a *Application) Catalog() *inventory.Catalog {
	return a.catalog
}

func (a *Application) Ledger() *inventory.Ledger {
	return a.ledger
}

// DB returns the SQL handle, nil unless the postgres backend is active
func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideStore replaces the application's store (used in tests).
func (a *Application) OverrideStore(store repository.Store) {
	a.store = store
	a.catalog = inventory.NewCatalog(store)
	a.ledger = inventory.NewLedger(store)
}

func (a *Application) Init(cfg *config.AppConfig) error {
	InitLogger(cfg)
	setLocation(cfg.System.Location)

	store, err := a.openStore(cfg)
	if err != nil {
		return err
	}
	a.OverrideStore(store)
	zap.S().Infof("Storage ready, type: %s", cfg.Storage.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		return err
	}
	if cfg.Storage.Seed {
		a.checkProducts()
	}
	return nil
}

// setLocation switches time.Local; an unknown zone keeps the current one.
func setLocation(name string) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		zap.L().Error("timezone config error", zap.String("location", name), zap.Error(err))
		return
	}
	time.Local = loc
}

// InitLogger installs the global zap logger; with file output enabled
// JSON lines go to a rotated file and console lines to stdout.
func InitLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) openStore(cfg *config.AppConfig) (repository.Store, error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		return repository.NewMemoryStore(), nil
	case config.StorageBolt:
		return repository.OpenBoltStore(cfg.BoltPath())
	case config.StoragePostgres:
		db, err := repository.OpenPostgres(repository.PostgresOptions{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Name:     cfg.Database.Name,
			User:     cfg.Database.User,
			Passwd:   cfg.Database.Passwd,
			MaxConn:  cfg.Database.MaxConn,
			IdleConn: cfg.Database.IdleConn,
			Debug:    cfg.Database.Debug,
		})
		if err != nil {
			return nil, err
		}
		a.gormDB = db
		return repository.NewGormStore(db), nil
	default:
		return nil, errors.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

func (a *Application) MigrateDB(track bool) error {
	gs, ok := a.store.(*repository.GormStore)
	if !ok {
		return nil
	}
	if track {
		gs = repository.NewGormStore(a.gormDB.Debug())
	}
	if err := gs.Migrate(); err != nil {
		zap.S().Error(err)
		return errors.Wrap(err, "migrate database")
	}
	return nil
}

func (a *Application) InitDb() error {
	var err error
	switch s := a.store.(type) {
	case *repository.GormStore:
		err = errors.Wrap(s.Reset(), "reset database")
	case *repository.BoltStore:
		err = errors.Wrap(s.Reset(), "reset bolt store")
	default:
		a.OverrideStore(repository.NewMemoryStore())
	}
	if err != nil {
		return err
	}
	if a.appConfig.Storage.Seed {
		a.checkProducts()
	}
	return nil
}

func (a *Application) Release() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		zap.S().Error("close store error: ", err)
	}
	_ = zap.L().Sync()
}
