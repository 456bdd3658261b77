package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spcgrid/spcgrid/internal/logging"
)

// AlertListener consumes violation events from the broker and logs each one
// as a structured alert. It is the in-process counterpart of the Notifier;
// external alerting systems attach their own consumers to the same subject.
type AlertListener struct {
	logger  *logging.Logger
	sub     Subscriber
	subject string

	mu      sync.Mutex
	total   int
	byChart map[string]int
}

// NewAlertListener creates a listener for the given subject
func NewAlertListener(logger *logging.Logger, sub Subscriber, subject string) *AlertListener {
	return &AlertListener{
		logger:  logger,
		sub:     sub,
		subject: subject,
		byChart: make(map[string]int),
	}
}

// Start subscribes to the violation subject
func (l *AlertListener) Start() error {
	if err := l.sub.Subscribe(l.subject, l.handle); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", l.subject, err)
	}
	l.logger.Info("Violation alert listener started", "subject", l.subject)
	return nil
}

// Stop unsubscribes from the violation subject
func (l *AlertListener) Stop() error {
	return l.sub.Unsubscribe(l.subject)
}

// handle decodes and logs one violation event. A decode error is returned
// so broker backends can NAK and redeliver.
func (l *AlertListener) handle(data []byte) error {
	var ev ViolationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("failed to decode violation event: %w", err)
	}

	l.mu.Lock()
	l.total++
	l.byChart[ev.ChartType]++
	l.mu.Unlock()

	l.logger.Warn("control rule violation",
		"event_id", ev.EventID,
		"request_id", ev.RequestID,
		"chart_type", ev.ChartType,
		"axis", ev.Axis,
		"point_index", ev.PointIndex,
		"value", ev.Value,
		"rules", ev.Rules,
	)
	return nil
}

// Stats returns the number of alerts seen in total and per chart type
func (l *AlertListener) Stats() (int, map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byChart := make(map[string]int, len(l.byChart))
	for k, v := range l.byChart {
		byChart[k] = v
	}
	return l.total, byChart
}
