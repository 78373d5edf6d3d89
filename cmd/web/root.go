package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"user-portal/pkg/common/config"
	"user-portal/pkg/core/user/model"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "web",
		Short:        "User portal backend",
		Long:         `User registration, login, session validation and profile management over HTTP.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (JSON or YAML)")
	flags.String("addr", "", "listen address, e.g. :8080")
	flags.String("env", "", "environment name (production hides panic details)")
	flags.String("db-driver", "", "storage driver: mysql | memory")
	flags.String("log-level", "", "log level: trace | debug | info | warn | error")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and security tables",
		RunE:  runMigrate,
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("config", configFile).Wrap(err)
	}
	hlog.SetLevel(cfg.HlogLevel())
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			hlog.Errorf("Failed to close store: %v", err)
		}
	}()

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)

	// 注册路由
	app.Register(h)

	hlog.Infof("Starting user portal env=%s addr=%s driver=%s", cfg.Env, cfg.Server.Address, cfg.Database.Driver)
	h.Spin()
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverMySQL {
		return oops.Code("CONFIG_INVALID").Errorf("migrate requires the %s driver, got %q", config.DriverMySQL, cfg.Database.Driver)
	}

	cmd.Println("Connecting to database...")
	db, err := cfg.InitDB()
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	cmd.Println("Running migrations...")
	if err := model.AutoMigrate(db); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "auto migrate").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
