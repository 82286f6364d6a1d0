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

package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stratumhq/stratum/types"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type gadget struct {
	bun.BaseModel `bun:"table:gadgets,alias:gadgets"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
	Qty  int    `bun:"qty"`
}

type note struct {
	bun.BaseModel `bun:"table:notes,alias:notes"`

	ID int64 `bun:"id,pk,autoincrement"`
	types.Audit

	Title string `bun:"title"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	err = db.ResetModel(context.Background(), (*gadget)(nil), (*note)(nil))
	require.NoError(t, err)
	return db
}

func seedGadgets(t *testing.T, repo Repository[gadget], items ...*gadget) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, repo.Create(context.Background(), item))
	}
}
