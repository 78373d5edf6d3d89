package main

import (
	"bytes"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-portal/pkg/common/config"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate", "--config", "--db-driver"} {
		assert.Contains(t, output, sub)
	}
}

func TestMigrate_RequiresMySQL(t *testing.T) {
	t.Setenv("APP_CONFIG", "")
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"migrate", "--db-driver", "memory"})

	err := cmd.Execute()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}

func TestApplication_MemoryDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Password.Cost = bcrypt.MinCost

	app, err := newApplication(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	h := server.New()
	app.Register(h)

	w := ut.PerformRequest(h.Engine, "GET", "/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "go_goroutines")
}

func TestApplication_InvalidSigningMethod(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.Session.SigningMethod = "RS256"

	_, err := newApplication(cfg)
	require.Error(t, err)
}

func TestNewGormStore_ClosesPoolWhenMigrationFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// 迁移语句均未预期，AutoMigrate 必然失败
	mock.ExpectClose()

	store, closeStore, err := newGormStore(db, true)
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Nil(t, closeStore)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "MIGRATION_FAILED", oopsErr.Code())
	assert.NoError(t, mock.ExpectationsWereMet())
}
