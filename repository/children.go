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
	"fmt"

	"github.com/uptrace/bun"
)

// ChildAction says what to do with one child row when reconciling a parent's
// child collection against an incoming snapshot.
type ChildAction int

const (
	// ChildInsert adds a row that exists in the snapshot but not in the store.
	ChildInsert ChildAction = iota
	// ChildUpdate rewrites a row present on both sides.
	ChildUpdate
	// ChildRemove deletes a row the snapshot no longer contains.
	ChildRemove
)

// ChildOp pairs one child entity with the action to apply to it.
type ChildOp[C any] struct {
	Action ChildAction
	Entity *C
}

// SaveChildren applies a reconciliation plan for a parent's child rows on
// the given connection, usually a transaction shared with the parent write.
// Child rows carry no audit columns of their own; the parent's audit trail
// covers the change.
func SaveChildren[C any](ctx context.Context, conn bun.IDB, ops []ChildOp[C]) error {
	for _, op := range ops {
		var err error
		switch op.Action {
		case ChildInsert:
			_, err = conn.NewInsert().Model(op.Entity).Exec(ctx)
		case ChildUpdate:
			_, err = conn.NewUpdate().Model(op.Entity).WherePK().Exec(ctx)
		case ChildRemove:
			_, err = conn.NewDelete().Model(op.Entity).WherePK().Exec(ctx)
		default:
			return fmt.Errorf("%w: child action %d", ErrUnsupported, op.Action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
