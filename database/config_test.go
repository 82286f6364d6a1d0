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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	content := `
connection_config:
  type: postgres
  host: db.internal
  port: 5432
  username: app
  dbname: marketplace
  max_open_conns: 25
migrate_on_startup: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.ConnectionConfig.Type)
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 5432, cfg.ConnectionConfig.Port)
	assert.Equal(t, 25, cfg.ConnectionConfig.MaxOpenConns)
	assert.True(t, cfg.MigrateOnStartup)

	// unset fields keep the defaults
	assert.Equal(t, 10, cfg.ConnectionConfig.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnectionConfig.ConnMaxLifetime)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	cfg := DefaultConnectionConfig()
	cfg.Host = "from-file"
	cfg.OverrideFromEnv()

	assert.Equal(t, "override.internal", cfg.Host)
	assert.Equal(t, 6432, cfg.Port)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, 7, cfg.MaxOpenConns)
	assert.True(t, cfg.EnableQueryLog)
}

func TestOverrideFromEnvIgnoresBadValues(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	cfg := DefaultConnectionConfig()
	cfg.Port = 5432
	cfg.OverrideFromEnv()

	assert.Equal(t, 5432, cfg.Port)
}
