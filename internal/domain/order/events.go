package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "Order"

// EventTypeOrderStateTransition is published whenever an order changes state
const EventTypeOrderStateTransition = "OrderStateTransition"

// ErrInvalidTransition is returned when a transition message cannot be decoded
var ErrInvalidTransition = errors.New("invalid order state transition")

// StateTransitionEvent is raised when an order moves from one state to another
type StateTransitionEvent struct {
	shared.BaseDomainEvent
	Order     *Order `json:"order"`
	FromState State  `json:"fromState"`
	ToState   State  `json:"toState"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(o *Order, from, to State) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStateTransition, AggregateTypeOrder, o.ID),
		Order:           o,
		FromState:       from,
		ToState:         to,
	}
}

// EventType returns the event type name
func (e *StateTransitionEvent) EventType() string {
	return EventTypeOrderStateTransition
}

// OrderCode returns the code of the transitioned order
func (e *StateTransitionEvent) OrderCode() string {
	if e == nil || e.Order == nil {
		return ""
	}
	return e.Order.Code
}

// TransitionMessage is the wire form of a state transition as sent by the
// commerce platform over HTTP or AMQP
type TransitionMessage struct {
	EventID   string    `json:"eventId,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	OrderCode string    `json:"orderCode" binding:"required"`
	FromState string    `json:"fromState"`
	ToState   string    `json:"toState" binding:"required"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Order     *Order    `json:"order,omitempty"`
}

// DecodeTransitionMessage parses a JSON transition message
func DecodeTransitionMessage(data []byte) (*TransitionMessage, error) {
	var msg TransitionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return &msg, nil
}

// ToEvent validates the message and converts it to a StateTransitionEvent.
// A supplied event id is kept so redeliveries of the same message share an id.
func (m *TransitionMessage) ToEvent() (*StateTransitionEvent, error) {
	if strings.TrimSpace(m.OrderCode) == "" {
		return nil, fmt.Errorf("%w: orderCode is required", ErrInvalidTransition)
	}
	to, err := ParseState(m.ToState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	var from State
	if m.FromState != "" {
		if from, err = ParseState(m.FromState); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
	}

	o := m.Order
	if o == nil {
		o = &Order{}
	}
	o.Code = m.OrderCode
	o.State = to
	if m.OrderID != "" {
		id, err := uuid.Parse(m.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%w: orderId: %v", ErrInvalidTransition, err)
		}
		o.ID = id
	}

	evt := NewStateTransitionEvent(o, from, to)
	if m.EventID != "" {
		id, err := uuid.Parse(m.EventID)
		if err != nil {
			return nil, fmt.Errorf("%w: eventId: %v", ErrInvalidTransition, err)
		}
		evt.ID = id
	}
	if !m.Timestamp.IsZero() {
		evt.Timestamp = m.Timestamp
	}
	return evt, nil
}
