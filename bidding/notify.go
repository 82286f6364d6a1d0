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

import (
	"context"

	"github.com/stratumhq/stratum/utils"
)

// Notification is the email-shaped payload handed to a Notifier. Language
// is the recipient's locale so delivery can pick a template.
type Notification struct {
	Email        string
	Language     string
	ProjectTitle string
	Amount       float64
}

// Notifier delivers bid lifecycle notifications. Implementations are best
// effort from the workflow's point of view: delivery failures are logged,
// never propagated into the business result.
type Notifier interface {
	OnBidPlaced(ctx context.Context, n Notification) error
	OnBidApproved(ctx context.Context, n Notification) error
	OnBidRejected(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log instead of sending them. It
// is the default wiring for environments without a mail transport.
type LogNotifier struct {
	log *utils.Logger
}

// NewLogNotifier returns a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: utils.NewLogger("NOTIFY")}
}

func (n *LogNotifier) OnBidPlaced(ctx context.Context, note Notification) error {
	n.log.Infof("bid placed: to=%s lang=%s project=%q amount=%.2f", note.Email, note.Language, note.ProjectTitle, note.Amount)
	return nil
}

func (n *LogNotifier) OnBidApproved(ctx context.Context, note Notification) error {
	n.log.Infof("bid approved: to=%s lang=%s project=%q amount=%.2f", note.Email, note.Language, note.ProjectTitle, note.Amount)
	return nil
}

func (n *LogNotifier) OnBidRejected(ctx context.Context, note Notification) error {
	n.log.Infof("bid rejected: to=%s lang=%s project=%q", note.Email, note.Language, note.ProjectTitle)
	return nil
}
