// ABOUTME: Dispatches tool calls to registered handlers with timeouts.
// ABOUTME: Enforces capability checks and logs every call and outcome.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrForbidden indicates the caller lacks a required capability.
var ErrForbidden = errors.New("missing required capability")

// DefaultTimeout bounds one tool execution.
const DefaultTimeout = 30 * time.Second

// Dispatcher routes tool calls to their handlers.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
}

// DispatcherConfig contains configuration options for the Dispatcher.
type DispatcherConfig struct {
	Registry *Registry
	Logger   *slog.Logger
	Timeout  time.Duration
}

// NewDispatcher creates a Dispatcher with the given configuration.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: cfg.Registry,
		logger:   logger,
		timeout:  timeout,
	}
}

// Dispatch executes one tool call on behalf of a caller. The caller's
// capabilities gate access; execution is bounded by the configured timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, callerID string, caps []string, toolName string, input json.RawMessage) (json.RawMessage, error) {
	tool := d.registry.Get(toolName)
	if tool == nil {
		return nil, ErrToolNotFound
	}
	if !d.registry.Allowed(toolName, caps) {
		return nil, ErrForbidden
	}

	d.logger.Info("→ dispatching tool call",
		"tool_name", toolName,
		"caller_id", callerID,
	)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := tool.Handler(ctx, callerID, input)
	if err != nil {
		d.logger.Warn("tool error",
			"tool_name", toolName,
			"caller_id", callerID,
			"error", err,
		)
		return nil, err
	}

	d.logger.Info("← tool responded",
		"tool_name", toolName,
		"caller_id", callerID,
	)
	return result, nil
}
