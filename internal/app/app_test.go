package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/stockboard/config"
	"github.com/talkincode/stockboard/internal/inventory"
	"github.com/talkincode/stockboard/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T, storage string) *config.AppConfig {
	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = t.TempDir()
	cfg.Storage.Type = storage
	cfg.Logger.FileEnable = false
	return &cfg
}

func TestInitSeedsBoltStore(t *testing.T) {
	cfg := testConfig(t, config.StorageBolt)
	application := NewApplication(cfg)
	require.NoError(t, application.Init(cfg))
	defer application.Release()

	_, ok := application.Store().(*repository.BoltStore)
	require.True(t, ok)
	assert.FileExists(t, filepath.Join(cfg.System.Workdir, "data", "stockboard.db"))

	items, err := application.Catalog().ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, len(inventory.DefaultProducts))
}

func TestInitWithoutSeed(t *testing.T) {
	cfg := testConfig(t, config.StorageMemory)
	cfg.Storage.Seed = false
	application := NewApplication(cfg)
	require.NoError(t, application.Init(cfg))
	defer application.Release()

	items, err := application.Catalog().ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Nil(t, application.DB())
}

func TestInitDbResetsRecords(t *testing.T) {
	cfg := testConfig(t, config.StorageBolt)
	application := NewApplication(cfg)
	require.NoError(t, application.Init(cfg))
	defer application.Release()
	ctx := context.Background()

	items, err := application.Catalog().ListProducts(ctx)
	require.NoError(t, err)
	_, err = application.Ledger().CreateRecord(ctx, inventory.RecordInput{
		ProductID: items[0].ID, Date: "2024-03-01", OpeningStock: 3,
	})
	require.NoError(t, err)

	require.NoError(t, application.InitDb())

	records, err := application.Ledger().ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, records)
	items, err = application.Catalog().ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(inventory.DefaultProducts))
}

func TestSetLocationLogsUnknownZone(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()
	local := time.Local
	defer func() { time.Local = local }()

	setLocation("Mars/Olympus_Mons")
	assert.Same(t, local, time.Local)
	entries := logs.FilterMessage("timezone config error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Mars/Olympus_Mons", entries[0].ContextMap()["location"])

	setLocation("UTC")
	assert.Equal(t, "UTC", time.Local.String())
}

func TestInitInstallsLoggerBeforeLocation(t *testing.T) {
	cfg := testConfig(t, config.StorageMemory)
	cfg.System.Location = "Mars/Olympus_Mons"
	local := time.Local
	defer func() { time.Local = local }()
	defer zap.ReplaceGlobals(zap.NewNop())

	application := NewApplication(cfg)
	require.NoError(t, application.Init(cfg))
	defer application.Release()
	assert.True(t, zap.L().Core().Enabled(zapcore.ErrorLevel))
}
