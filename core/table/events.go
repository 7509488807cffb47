package table

import (
	"context"
	"fmt"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/query"
)

// ViewEventType identifies a change to a table view.
type ViewEventType string

const (
	ViewRecordsChanged ViewEventType = "view:records:changed"
	ViewSearchChanged  ViewEventType = "view:search:changed"
	ViewFilterChanged  ViewEventType = "view:filter:changed"
	ViewFiltersReset   ViewEventType = "view:filters:reset"
	ViewSortChanged    ViewEventType = "view:sort:changed"
	ViewPageChanged    ViewEventType = "view:page:changed"
	ViewStateApplied   ViewEventType = "view:state:applied"
)

// ViewEvent describes one change to a table view.
type ViewEvent struct {
	Type      ViewEventType   `json:"type"`            // The type of event (e.g., 'view:sort:changed').
	Timestamp int64           `json:"timestamp"`       // Unix milliseconds.
	Operation string          `json:"operation"`       // The engine method that caused the change.
	Table     *string         `json:"table,omitempty"` // Name of the table, if it has one.
	Input     any             `json:"input,omitempty"` // Arguments of the operation.
	State     query.ViewState `json:"state"`           // The view state after the change.
}

// EventCallbackFunction receives view events.
type EventCallbackFunction func(ctx context.Context, event ViewEvent) error

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	ID          string        `json:"id"`
	Event       ViewEventType `json:"event"`
	Unsubscribe func()        `json:"-"`
}

func createEvent(eventType ViewEventType, operation, table string, input any, state query.ViewState) ViewEvent {
	var tablePtr *string
	if table != "" {
		tablePtr = &table
	}
	return ViewEvent{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Operation: operation,
		Table:     tablePtr,
		Input:     input,
		State:     state,
	}
}

// Subscribe registers a callback for one event type and returns the id of the
// subscription. The event bus is created on the first subscription.
func (e *Engine[R]) Subscribe(event ViewEventType, callback EventCallbackFunction) (string, error) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	if e.bus == nil {
		bus, err := events.NewTypedEventBus[ViewEvent](events.DefaultConfig())
		if err != nil {
			return "", fmt.Errorf("could not initialize event bus: %w", err)
		}
		e.bus = bus
	}

	unsubscribe := e.bus.Subscribe(string(event), callback)
	id := uuid.New().String()
	e.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Unsubscribe: unsubscribe,
	}
	e.logger.Info("Registered view subscription",
		zap.String("event", string(event)),
		zap.String("subscriptionId", id))
	return id, nil
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (e *Engine[R]) Unsubscribe(id string) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	info := e.subscriptions[id]
	if info != nil {
		info.Unsubscribe()
		delete(e.subscriptions, id)
		e.logger.Info("Removed view subscription", zap.String("subscriptionId", id))
	}
}

// Subscriptions returns the registered subscriptions.
func (e *Engine[R]) Subscriptions() []SubscriptionInfo {
	e.subMu.RLock()
	defer e.subMu.RUnlock()
	out := make([]SubscriptionInfo, 0, len(e.subscriptions))
	for _, info := range e.subscriptions {
		out = append(out, *info)
	}
	return out
}

func (e *Engine[R]) emit(eventType ViewEventType, operation string, input any) {
	e.subMu.RLock()
	bus := e.bus
	e.subMu.RUnlock()
	if bus == nil {
		return
	}
	bus.Emit(string(eventType), createEvent(eventType, operation, e.name, input, e.State()))
}
