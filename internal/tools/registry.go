// ABOUTME: Thread-safe registry for tool packs exposed over MCP.
// ABOUTME: Manages pack registration, tool lookup, and capability-based filtering.

// Package tools defines the tool abstraction served over MCP: named,
// schema-described operations grouped into packs, registered once at startup
// and dispatched in-process.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrToolCollision indicates a tool name already exists from another pack.
var ErrToolCollision = errors.New("tool name collision")

// Definition describes one callable tool.
type Definition struct {
	Name                 string
	Description          string
	InputSchema          string // JSON Schema for the tool's arguments
	RequiredCapabilities []string
}

// Handler executes a tool. It receives the calling client's ID and the tool
// input as JSON. Returns the result as JSON or an error.
type Handler func(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error)

// Tool pairs a definition with its in-process handler.
type Tool struct {
	Definition Definition
	Handler    Handler
}

// Pack is a collection of tools sharing a pack ID.
type Pack struct {
	ID    string
	Tools []*Tool
}

type entry struct {
	tool   *Tool
	packID string
}

// Registry maintains the registered packs and their tools.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*entry
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*entry),
		logger: logger,
	}
}

// RegisterPack validates and stores a pack's tools.
// Returns ErrToolCollision if any tool name already exists.
func (r *Registry) RegisterPack(pack *Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range pack.Tools {
		if existing, exists := r.tools[tool.Definition.Name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'",
				ErrToolCollision, tool.Definition.Name, existing.packID)
		}
	}

	for _, tool := range pack.Tools {
		r.tools[tool.Definition.Name] = &entry{tool: tool, packID: pack.ID}
	}

	r.logger.Info("=== PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.tools),
	)
	return nil
}

// Get returns a tool by name, or nil if not registered.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.tools[name]; ok {
		return e.tool
	}
	return nil
}

// Definitions returns every registered tool definition, sorted by name.
func (r *Registry) Definitions() []Definition {
	return r.DefinitionsForCapabilities(nil, true)
}

// DefinitionsForCapabilities returns the definitions of tools the caller may
// use: a tool is visible when the caller holds ALL of its required
// capabilities, or when the tool requires none. all=true skips the filter.
// Results are sorted by name for stable listings.
func (r *Registry) DefinitionsForCapabilities(caps []string, all bool) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	capSet := make(map[string]struct{}, len(caps))
	for _, c := range caps {
		capSet[c] = struct{}{}
	}

	out := make([]Definition, 0, len(r.tools))
	for _, e := range r.tools {
		if all || hasAllCapabilities(e.tool.Definition.RequiredCapabilities, capSet) {
			out = append(out, e.tool.Definition)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Allowed reports whether the caller's capabilities cover the tool's
// requirements.
func (r *Registry) Allowed(name string, caps []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return false
	}
	capSet := make(map[string]struct{}, len(caps))
	for _, c := range caps {
		capSet[c] = struct{}{}
	}
	return hasAllCapabilities(e.tool.Definition.RequiredCapabilities, capSet)
}

func hasAllCapabilities(required []string, capSet map[string]struct{}) bool {
	for _, req := range required {
		if _, ok := capSet[req]; !ok {
			return false
		}
	}
	return true
}
