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

package types

import "time"

// Audit carries the bookkeeping columns shared by every auditable entity.
// Embed it into a Bun model; the fields are flattened into the table.
//
// IsDeleted marks a row as logically removed: soft-deleted rows stay in the
// store but are invisible on all default read paths until hard-deleted.
// Version is the optimistic-lock counter, incremented on every successful
// update; a stale value at write time means the row changed concurrently.
type Audit struct {
	CreatedBy string    `bun:"created_by" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedBy string    `bun:"updated_by" json:"updated_by"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
	IsDeleted bool      `bun:"is_deleted" json:"is_deleted"`
	Version   int64     `bun:"version" json:"version"`
}

// AuditFields exposes the embedded audit block for stamping.
func (a *Audit) AuditFields() *Audit { return a }

// AuditRecord is implemented by any entity pointer that embeds Audit.
type AuditRecord interface {
	AuditFields() *Audit
}
