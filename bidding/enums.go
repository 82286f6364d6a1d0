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

package bidding

import "github.com/stratumhq/stratum/types"

var (
	_ types.BaseEnum = UserStatusPending
	_ types.BaseEnum = ProjectStatusDraft
	_ types.BaseEnum = ProjectEndTypeUnset
)

// UserStatus is the account approval state.
type UserStatus int

const (
	UserStatusPending UserStatus = iota
	UserStatusApproved
	UserStatusSuspended
)

var userStatusNames = map[UserStatus]string{
	UserStatusPending:   "pending",
	UserStatusApproved:  "approved",
	UserStatusSuspended: "suspended",
}

var userStatusDescs = map[UserStatus]string{
	UserStatusPending:   "awaiting approval",
	UserStatusApproved:  "approved for marketplace activity",
	UserStatusSuspended: "suspended by an administrator",
}

func (s UserStatus) IsValid() bool { _, ok := userStatusNames[s]; return ok }

func (s UserStatus) Number() int { return int(s) }

func (s UserStatus) Name() string {
	if name, ok := userStatusNames[s]; ok {
		return name
	}
	return types.IllegalName
}

func (s UserStatus) String() string { return s.Name() }

func (s UserStatus) Desc() string {
	if desc, ok := userStatusDescs[s]; ok {
		return desc
	}
	return types.IllegalDesc
}

// ProjectStatus is the project lifecycle state. Bids are only accepted,
// approved, or canceled while the project is open.
type ProjectStatus int

const (
	ProjectStatusDraft ProjectStatus = iota
	ProjectStatusOpen
	ProjectStatusPendingPayment
	ProjectStatusInProgress
	ProjectStatusCompleted
	ProjectStatusCanceled
)

var projectStatusNames = map[ProjectStatus]string{
	ProjectStatusDraft:          "draft",
	ProjectStatusOpen:           "open",
	ProjectStatusPendingPayment: "pending_payment",
	ProjectStatusInProgress:     "in_progress",
	ProjectStatusCompleted:      "completed",
	ProjectStatusCanceled:       "canceled",
}

var projectStatusDescs = map[ProjectStatus]string{
	ProjectStatusDraft:          "not yet published",
	ProjectStatusOpen:           "accepting bids",
	ProjectStatusPendingPayment: "bid approved, awaiting payment",
	ProjectStatusInProgress:     "work started",
	ProjectStatusCompleted:      "work delivered",
	ProjectStatusCanceled:       "withdrawn by the seeker",
}

func (s ProjectStatus) IsValid() bool { _, ok := projectStatusNames[s]; return ok }

func (s ProjectStatus) Number() int { return int(s) }

func (s ProjectStatus) Name() string {
	if name, ok := projectStatusNames[s]; ok {
		return name
	}
	return types.IllegalName
}

func (s ProjectStatus) String() string { return s.Name() }

func (s ProjectStatus) Desc() string {
	if desc, ok := projectStatusDescs[s]; ok {
		return desc
	}
	return types.IllegalDesc
}

// ProjectEndType says how a project's end date is derived once work starts.
type ProjectEndType int

const (
	ProjectEndTypeUnset ProjectEndType = iota
	// ProjectEndTypeWorkingDays derives the end date by adding EndDays to
	// the start date.
	ProjectEndTypeWorkingDays
)

var projectEndTypeNames = map[ProjectEndType]string{
	ProjectEndTypeUnset:       "unset",
	ProjectEndTypeWorkingDays: "working_days",
}

func (t ProjectEndType) IsValid() bool { _, ok := projectEndTypeNames[t]; return ok }

func (t ProjectEndType) Number() int { return int(t) }

func (t ProjectEndType) Name() string {
	if name, ok := projectEndTypeNames[t]; ok {
		return name
	}
	return types.IllegalName
}

func (t ProjectEndType) String() string { return t.Name() }

func (t ProjectEndType) Desc() string { return t.Name() }

// PaymentMethod selects how an approved bid is paid. PaymentMethodOther
// defers payment: the project parks in pending_payment and no notifications
// go out until payment is arranged.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodOther  PaymentMethod = "other"
)
