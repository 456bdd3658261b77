package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spcgrid/spcgrid/internal/spc"
)

// ViolationEvent is the wire payload emitted for every point that violates
// a control rule. Consumers key on chart type and rule identifiers.
type ViolationEvent struct {
	EventID    string       `json:"event_id"`
	RequestID  string       `json:"request_id,omitempty"`
	ChartType  string       `json:"chart_type"`
	Axis       string       `json:"axis"`
	PointIndex int          `json:"point_index"`
	Value      float64      `json:"value"`
	Rules      []spc.RuleID `json:"rules"`
	EmittedAt  time.Time    `json:"emitted_at"`
}

// Notifier publishes violation events extracted from chart results
type Notifier struct {
	pub     Publisher
	subject string
}

// NewNotifier creates a notifier publishing to the given subject
func NewNotifier(pub Publisher, subject string) *Notifier {
	return &Notifier{pub: pub, subject: subject}
}

// NotifyResult publishes one event per violating point across all axes and
// the CUSUM scan. Returns the number of events published.
func (n *Notifier) NotifyResult(ctx context.Context, requestID string, result *spc.Result) (int, error) {
	events := CollectViolations(requestID, result)
	if len(events) == 0 {
		return 0, nil
	}

	messages := make([]BatchMessage, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return 0, fmt.Errorf("failed to encode violation event: %w", err)
		}
		messages = append(messages, BatchMessage{Subject: n.subject, Data: data})
	}

	return n.pub.PublishBatch(ctx, messages)
}

// Close closes the underlying publisher
func (n *Notifier) Close() error {
	return n.pub.Close()
}

// CollectViolations flattens a chart result into violation events
func CollectViolations(requestID string, result *spc.Result) []ViolationEvent {
	now := time.Now().UTC()
	var events []ViolationEvent

	for _, axis := range result.Axes {
		for _, p := range axis.Points {
			if len(p.Violations) == 0 {
				continue
			}
			events = append(events, ViolationEvent{
				EventID:    uuid.New().String(),
				RequestID:  requestID,
				ChartType:  string(result.ChartType),
				Axis:       axis.Name,
				PointIndex: p.Index,
				Value:      p.Value,
				Rules:      p.Violations,
				EmittedAt:  now,
			})
		}
	}

	if result.CUSUM != nil {
		for _, p := range result.CUSUM.Points {
			if !p.Violation {
				continue
			}
			events = append(events, ViolationEvent{
				EventID:    uuid.New().String(),
				RequestID:  requestID,
				ChartType:  string(result.ChartType),
				Axis:       "cusum",
				PointIndex: p.Index,
				Value:      p.Upper,
				Rules:      []spc.RuleID{spc.RuleCUSUMSignal},
				EmittedAt:  now,
			})
		}
	}

	return events
}
