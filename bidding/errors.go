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

import "errors"

// Workflow validation errors. Each failed precondition has its own sentinel
// so callers can map it to a precise response instead of a generic refusal.
var (
	ErrUserNotApproved  = errors.New("bidding: user is not approved")
	ErrBidAlreadyExists = errors.New("bidding: provider already has an active bid on this project")
	ErrProjectNotFound  = errors.New("bidding: project not found")
	ErrProjectNotOpen   = errors.New("bidding: project is not open for bidding")
	ErrAmountOutOfRange = errors.New("bidding: bid amount is outside the project budget")
	ErrProviderNotFound = errors.New("bidding: provider not found")
	ErrBidNotFound      = errors.New("bidding: bid not found")
	ErrBidCanceled      = errors.New("bidding: bid is canceled")
	ErrNotBidOwner      = errors.New("bidding: providers may only cancel their own bids")
)
