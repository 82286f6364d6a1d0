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

package stratum

// Mapper converts between the storage entity T and the transfer shape D.
// Apply merges an incoming DTO onto an already-loaded entity; the mapper
// decides which fields an update may overwrite, so audit and identity
// columns stay untouched. Key extracts the entity identifier from a DTO.
type Mapper[T any, D any] interface {
	ToEntity(dto *D) *T
	ToDTO(entity *T) *D
	Apply(dto *D, entity *T)
	Key(dto *D) any
}
