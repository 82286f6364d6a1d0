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

// Package requestinfo carries the authenticated caller's identity through a
// context.Context. Audit stamping and role checks read it; resolving the
// identity (sessions, tokens) is owned elsewhere.
package requestinfo

import (
	"context"

	"github.com/google/uuid"
)

// Role names the capacity the caller is acting in.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Info identifies the current request's authenticated user.
type Info struct {
	UserID     string
	Role       Role
	ProviderID uuid.UUID
	SeekerID   uuid.UUID
	Language   string
}

type ctxKey struct{}

// NewContext returns a context carrying info.
func NewContext(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the request info stored in ctx, if any.
func FromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(ctxKey{}).(Info)
	return info, ok
}

// UserID returns the current user's id, or "" for unauthenticated (system)
// callers.
func UserID(ctx context.Context) string {
	info, _ := FromContext(ctx)
	return info.UserID
}
