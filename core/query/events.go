package query

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompilerEventType names the events published by a Compiler.
type CompilerEventType string

const (
	OperatorRegistered CompilerEventType = "operator:register"
	CompileSuccess     CompilerEventType = "compile:success"
	CompileFailed      CompilerEventType = "compile:failed"
)

// CompilerEvent describes a registration or a finished compilation.
type CompilerEvent struct {
	Type      CompilerEventType `json:"type"`
	Timestamp int64             `json:"timestamp"`          // Unix milliseconds.
	Operation string            `json:"operation"`          // filter, expression, pipeline or register.
	Dialect   Dialect           `json:"dialect,omitempty"`  // Dialect compiled for.
	Kind      OperatorKind      `json:"kind,omitempty"`     // Kind of the registered operator.
	Tag       string            `json:"tag,omitempty"`      // Tag of the registered operator.
	Input     any               `json:"input,omitempty"`    // Spec handed to the compiler.
	Output    string            `json:"output,omitempty"`   // Generated SQL.
	Error     *string           `json:"error,omitempty"`    // Error message if compilation failed.
	Duration  time.Duration     `json:"duration,omitempty"` // Time spent compiling.
}

// EventCallback receives compiler events.
type EventCallback func(ctx context.Context, event CompilerEvent) error

// Subscribe registers cb for one event type and returns an id for Unsubscribe.
func (c *Compiler) Subscribe(event CompilerEventType, cb EventCallback) string {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	unsubscribe := c.bus.Subscribe(string(event), func(ctx context.Context, e CompilerEvent) error {
		return cb(ctx, e)
	})
	id := uuid.New().String()
	c.subscriptions[id] = unsubscribe
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (c *Compiler) Unsubscribe(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if unsubscribe, ok := c.subscriptions[id]; ok {
		unsubscribe()
		delete(c.subscriptions, id)
	}
}

// Subscriptions returns the ids of the active subscriptions.
func (c *Compiler) Subscriptions() []string {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	ids := make([]string, 0, len(c.subscriptions))
	for id := range c.subscriptions {
		ids = append(ids, id)
	}
	return ids
}

func (c *Compiler) emit(event CompilerEvent) {
	if c.bus == nil {
		return
	}
	event.Timestamp = time.Now().UnixMilli()
	c.bus.Emit(string(event.Type), event)
}
