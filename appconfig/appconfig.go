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

// Package appconfig stores and serves named application settings, such as
// marketplace fee tunables, through the generic service stack.
package appconfig

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stratumhq/stratum"
	"github.com/stratumhq/stratum/database"
	"github.com/stratumhq/stratum/repository"
	"github.com/stratumhq/stratum/types"

	"github.com/uptrace/bun"
)

// Well-known setting names.
const (
	PaymentProcessingFee = "payment_processing_fee"
	PercentageForNew     = "percentage_for_new"
)

// ErrSettingNotFound signals a lookup for a name that has no stored value.
var ErrSettingNotFound = errors.New("appconfig: setting not found")

// Setting is one named configuration value. Kind documents how Value should
// be parsed ("string", "float", "int", "bool").
type Setting struct {
	bun.BaseModel `bun:"table:app_settings,alias:app_settings"`

	ID int64 `bun:"id,pk,autoincrement"`
	types.Audit

	Name  string `bun:"name,notnull,unique"`
	Value string `bun:"value"`
	Kind  string `bun:"kind"`
}

func init() {
	database.RegisterModel(database.NewModelAdapter((*Setting)(nil), 10))
}

// SettingModel is the transfer shape for a Setting.
type SettingModel struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

type settingMapper struct{}

func (settingMapper) ToEntity(dto *SettingModel) *Setting {
	return &Setting{
		ID:    dto.ID,
		Name:  dto.Name,
		Value: dto.Value,
		Kind:  dto.Kind,
	}
}

func (settingMapper) ToDTO(entity *Setting) *SettingModel {
	return &SettingModel{
		ID:    entity.ID,
		Name:  entity.Name,
		Value: entity.Value,
		Kind:  entity.Kind,
	}
}

func (settingMapper) Apply(dto *SettingModel, entity *Setting) {
	entity.Name = dto.Name
	entity.Value = dto.Value
	entity.Kind = dto.Kind
}

func (settingMapper) Key(dto *SettingModel) any { return dto.ID }

// Service looks up settings by name on top of the generic CRUD surface.
type Service interface {
	stratum.Service[Setting, SettingModel]

	// Value returns the stored string for name, or ErrSettingNotFound.
	Value(ctx context.Context, name string) (string, error)

	// Float parses the stored value for name as a float64.
	Float(ctx context.Context, name string) (float64, error)
}

type serviceImpl struct {
	stratum.Service[Setting, SettingModel]
	repo repository.AuditableRepository[Setting]
}

// NewService returns the setting service over the given database.
func NewService(db *bun.DB) Service {
	repo := repository.NewAuditableRepository[Setting](db)
	return &serviceImpl{
		Service: stratum.NewService[Setting, SettingModel](db, repo, settingMapper{}),
		repo:    repo,
	}
}

func (s *serviceImpl) Value(ctx context.Context, name string) (string, error) {
	setting, err := s.repo.Query("?TableAlias.name = ?", name).First(ctx)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, name)
	}
	return setting.Value, nil
}

func (s *serviceImpl) Float(ctx context.Context, name string) (float64, error) {
	raw, err := s.Value(ctx, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("appconfig: setting %s is not a number: %w", name, err)
	}
	return v, nil
}
