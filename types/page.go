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

// QueryPredicate describes a WHERE clause schema and its argument values.
type QueryPredicate struct {
	Schema string
	Args   []interface{}
}

// NewQueryPredicate creates a new predicate with schema and args.
func NewQueryPredicate(schema string, args ...interface{}) *QueryPredicate {
	return &QueryPredicate{schema, args}
}

// PageRequest describes pagination, an optional predicate, and ordering.
// Page numbers are 1-based.
type PageRequest struct {
	page     int
	pageSize int
	filter   *QueryPredicate
	orders   []string // "id ASC", "name DESC"
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = 10
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetFilter() *QueryPredicate {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// NewPageRequest constructs a PageRequest with predicate and order settings.
func NewPageRequest(page int, pageSize int, filter *QueryPredicate, orders []string) *PageRequest {
	return &PageRequest{page, pageSize, filter, orders}
}

// NewPageRequestWithFilter constructs a PageRequest with a predicate only.
func NewPageRequestWithFilter(page int, pageSize int, filter *QueryPredicate) *PageRequest {
	return NewPageRequest(page, pageSize, filter, make([]string, 0))
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(page int, pageSize int, orders []string) *PageRequest {
	return NewPageRequest(page, pageSize, nil, orders)
}

// NewDefaultPageRequest constructs a PageRequest with no predicate or ordering.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil, make([]string, 0))
}

// Pagination holds paged result items along with pagination metadata.
// Total is the count of all matching rows, unaffected by the paging window.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{page, pageSize, 0, make([]*T, 0)}
}

// ListFilter is a single declarative filter condition. Op defaults to "eq";
// supported operators are eq, ne, lt, lte, gt, gte, like and in (Value must
// be a slice for "in").
type ListFilter struct {
	Field string      `json:"field" yaml:"field"`
	Op    string      `json:"op" yaml:"op"`
	Value interface{} `json:"value" yaml:"value"`
}

// SortField is a declarative ordering instruction.
type SortField struct {
	Field string `json:"field" yaml:"field"`
	Desc  bool   `json:"desc" yaml:"desc"`
}

// ListRequest is the externally-shaped query request: declarative filters,
// sorting, and paging, typically decoded from a caller's payload. Page or
// PageSize <= 0 means "no paging": the full result set is returned and the
// reported total equals its length.
type ListRequest struct {
	Filters  []ListFilter `json:"filters" yaml:"filters"`
	Sort     []SortField  `json:"sort" yaml:"sort"`
	Page     int          `json:"page" yaml:"page"`
	PageSize int          `json:"page_size" yaml:"page_size"`
}

// Paged reports whether the request asks for a bounded page window.
func (r *ListRequest) Paged() bool {
	return r != nil && r.Page > 0 && r.PageSize > 0
}
