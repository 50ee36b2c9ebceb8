package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "brain", Version: "test", Timezone: "UTC", WeekStart: "monday"},
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: config.StorageConfig{Driver: driver, KeyPrefix: "productivity-brain"},
		Dispatch: config.DispatchConfig{
			TokenTTL: time.Hour,
			Issuer:   "productivity-brain",
			Audience: "dispatch-host",
		},
		Focus:   config.FocusConfig{TickInterval: time.Hour, DefaultDuration: 25},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func TestNewWiresRegistries(t *testing.T) {
	a := newTestApp(t, testConfig(config.DriverMemory))

	assert.Len(t, a.Components.List(), 13)
	assert.NotEmpty(t, a.Tools.List())
	assert.Equal(t, time.Monday, a.Analytics.WeekStart())
	assert.Equal(t, time.UTC, a.Store.Location())
	assert.False(t, a.Auth.Enabled())
	assert.Nil(t, a.DB)
}

func TestToolWriteVisibleToComponent(t *testing.T) {
	a := newTestApp(t, testConfig(config.DriverMemory))
	ctx := context.Background()

	out, err := a.Tools.Invoke(ctx, "add-task", json.RawMessage(`{"title":"Write report","priority":"high"}`))
	require.NoError(t, err)
	task, ok := out.(entities.Task)
	require.True(t, ok)
	assert.Equal(t, entities.TaskStatusTodo, task.Status)

	node, err := a.Components.Render(ctx, "TaskList", nil)
	require.NoError(t, err)
	items := node.FindAll(ui.OfKind(ui.KindItem))
	require.Len(t, items, 1)
	assert.Equal(t, "Write report", items[0].Text)
}

func TestSQLiteDriverPersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "brain.db")
	ctx := context.Background()

	first, err := New(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, first.DB)
	first.Store.AddNote(ctx, entities.NewNote{Title: "Ideas", Content: "Ship it", Color: entities.NoteColorBlue})
	require.NoError(t, first.Close())

	second := newTestApp(t, cfg)
	notes := second.Store.Notes(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, "Ideas", notes[0].Title)
	assert.False(t, second.Store.Health().Degraded)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("mongo"), logger.NewNop())
	assert.Error(t, err)
}

func TestCloseStopsTimers(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, err := New(context.Background(), testConfig(config.DriverMemory), logger.NewNop())
	require.NoError(t, err)

	_, err = a.Components.Act(context.Background(), "FocusTimer", "start", json.RawMessage(`{"duration":5}`), nil)
	require.NoError(t, err)

	require.NoError(t, a.Close())
}
