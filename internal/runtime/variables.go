package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/storyloom/pkg/domain"
)

// SetFlag assigns a boolean flag.
func (e *Engine) SetFlag(ctx context.Context, name string, value bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty flag name", domain.ErrInvalidVariable)
	}
	e.state.Player.Flags[name] = value
	return e.persist(ctx)
}

// Flag returns the flag value; unset flags are false.
func (e *Engine) Flag(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Player.Flags[name]
}

// SetVariable assigns a variable. Only strings and numbers are accepted.
func (e *Engine) SetVariable(ctx context.Context, name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setVariable(name, value); err != nil {
		e.logger.Warn("set variable rejected", "name", name, "error", err)
		return err
	}
	return e.persist(ctx)
}

// Variable returns a variable value and whether it is set.
func (e *Engine) Variable(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.state.Player.Variables[name]
	return v, ok
}

// DeleteVariable unsets a variable. Deleting an unset variable is a no-op
// that still persists.
func (e *Engine) DeleteVariable(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.state.Player.Variables, name)
	return e.persist(ctx)
}

func (e *Engine) setVariable(name string, value any) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty variable name", domain.ErrInvalidVariable)
	}
	if !isScalar(value) {
		return fmt.Errorf("%w: %q has type %T", domain.ErrInvalidVariable, name, value)
	}
	e.state.Player.Variables[name] = value
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
