/*
 * Copyright 2025 stratumhq.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:widgets"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

func init() {
	RegisterModel(NewModelAdapter((*widget)(nil), 1))
}

func sqliteMemoryConfig() *Config {
	conn := DefaultConnectionConfig()
	conn.Type = "sqlite"
	conn.DBName = ":memory:"
	conn.HealthCheckInterval = 0
	return &Config{ConnectionConfig: *conn, MigrateOnStartup: true}
}

func TestInitDBInMemorySQLite(t *testing.T) {
	db, err := InitDB(sqliteMemoryConfig())
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = CloseDB() })

	ctx := context.Background()

	// writes on one statement must be visible to the next: the in-memory
	// database lives on a single pooled connection
	_, err = db.NewInsert().Model(&widget{Name: "first"}).Exec(ctx)
	require.NoError(t, err)

	count, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Same(t, db, GetDB())

	status := GetHealthStatus(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
}

func TestInitDBClampsInMemoryPool(t *testing.T) {
	cfg := sqliteMemoryConfig()
	require.Greater(t, cfg.ConnectionConfig.MaxOpenConns, 1)

	_, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })

	stats := GetDatabaseStats()
	assert.Equal(t, 1, stats.MaxOpenConns)
}

func TestInitDBNilConfig(t *testing.T) {
	_, err := InitDB(nil)
	assert.Error(t, err)
}

func TestRunMigrationsCreatesRegisteredTables(t *testing.T) {
	cfg := sqliteMemoryConfig()
	cfg.MigrateOnStartup = false

	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })

	ctx := context.Background()
	manager := GetManager()
	require.NoError(t, manager.RunMigrations(ctx))

	// registered model tables exist afterwards
	_, err = db.NewInsert().Model(&widget{Name: "migrated"}).Exec(ctx)
	require.NoError(t, err)

	applied, err := NewMigrator(db, nil).AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001", applied[0].Version)
	assert.Equal(t, "create_base_tables", applied[0].Name)

	// re-running is a no-op, not a duplicate record
	require.NoError(t, manager.RunMigrations(ctx))
	applied, err = NewMigrator(db, nil).AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestManagerConnectLifecycle(t *testing.T) {
	cfg := sqliteMemoryConfig()
	manager := NewManager(&cfg.ConnectionConfig)

	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	require.NoError(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)

	require.NoError(t, manager.Disconnect())
	assert.Error(t, manager.Ping(ctx))
}

func TestManagerUnsupportedType(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"

	manager := NewManager(cfg)
	assert.Error(t, manager.Connect(context.Background()))
}
