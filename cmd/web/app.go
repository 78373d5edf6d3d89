package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"user-portal/pkg/common/config"
	"user-portal/pkg/common/metrics"
	"user-portal/pkg/core/user/credential"
	"user-portal/pkg/core/user/identity"
	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
	"user-portal/pkg/core/user/repository/dao/impl"
	"user-portal/pkg/core/user/repository/dao/memory"
	"user-portal/pkg/core/user/service"
	"user-portal/pkg/core/user/session"
	"user-portal/pkg/core/user/validator"
	"user-portal/pkg/web/router"
)

// application 组装好的服务依赖
type application struct {
	cfg      *config.Config
	users    *service.UserService
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	close    func() error
}

func newApplication(cfg *config.Config) (*application, error) {
	v, err := validator.New(cfg.Validation)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("section", "validation").Wrap(err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewService(cfg.Session, v, store.Credentials())
	if err != nil {
		_ = closeStore()
		return nil, oops.Code("CONFIG_INVALID").With("section", "session").Wrap(err)
	}

	registry := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.NewMetrics(registry)
	}

	users := service.NewUserService(
		store,
		v,
		identity.NewResolver(v),
		credential.NewManager(cfg.Password, v),
		sessions,
		m,
	)

	return &application{
		cfg:      cfg,
		users:    users,
		registry: registry,
		metrics:  m,
		close:    closeStore,
	}, nil
}

func (a *application) Register(h *server.Hertz) {
	deps := router.Deps{
		Config:  a.cfg,
		Users:   a.users,
		Metrics: a.metrics,
	}
	if a.metrics != nil {
		deps.Gatherer = a.registry
	}
	router.RegisterAPIs(h, deps)
}

func (a *application) Close() error {
	return a.close()
}

// openStore 按驱动创建存储
func openStore(cfg *config.Config) (dao.Store, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		hlog.Warnf("Using the in-memory store, data is lost on restart")
		return memory.NewStore(), func() error { return nil }, nil
	}

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return newGormStore(db, cfg.Database.AutoMigrate)
}

// newGormStore 迁移失败时关闭连接池
func newGormStore(db *gorm.DB, migrate bool) (dao.Store, func() error, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if migrate {
		if err := model.AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, oops.Code("MIGRATION_FAILED").With("operation", "auto migrate").Wrap(err)
		}
	}
	return impl.NewGormStore(db), sqlDB.Close, nil
}
