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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveChildren(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository[gadget](db)
	ctx := context.Background()

	kept := &gadget{Name: "kept", Qty: 1}
	stale := &gadget{Name: "stale", Qty: 2}
	seedGadgets(t, repo, kept, stale)

	kept.Qty = 7
	ops := []ChildOp[gadget]{
		{Action: ChildInsert, Entity: &gadget{Name: "fresh", Qty: 3}},
		{Action: ChildUpdate, Entity: kept},
		{Action: ChildRemove, Entity: stale},
	}
	require.NoError(t, SaveChildren(ctx, db, ops))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byName := map[string]int{}
	for _, g := range all {
		byName[g.Name] = g.Qty
	}
	assert.Equal(t, 7, byName["kept"])
	assert.Equal(t, 3, byName["fresh"])
	assert.NotContains(t, byName, "stale")
}

func TestSaveChildrenInTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository[gadget](db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, SaveChildren(ctx, tx, []ChildOp[gadget]{
		{Action: ChildInsert, Entity: &gadget{Name: "inside", Qty: 1}},
	}))
	require.NoError(t, tx.Rollback())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSaveChildrenUnknownAction(t *testing.T) {
	db := newTestDB(t)

	err := SaveChildren(context.Background(), db, []ChildOp[gadget]{
		{Action: ChildAction(99), Entity: &gadget{Name: "x"}},
	})
	assert.ErrorIs(t, err, ErrUnsupported)
}
