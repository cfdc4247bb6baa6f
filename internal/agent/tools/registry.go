package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// Tool names form a closed, enumerated set. The oracle may only request
// tools from this catalog; anything else is rejected at dispatch time.
const (
	ToolSearchKnowledgeBase = "search_knowledge_base"
	ToolSearchWeb           = "search_web"
	ToolSQLQueryGenerator   = "sql_query_generator"
	ToolCalculate           = "calculate"
)

// ErrUnknownTool is returned when a requested tool name is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// SideEffect classifies what a tool touches when invoked.
type SideEffect string

const (
	SideEffectReadOnly SideEffect = "read-only"
	SideEffectNetwork  SideEffect = "network"
	SideEffectCompute  SideEffect = "compute"
	SideEffectMutating SideEffect = "mutating"
)

// Output is the normalized success value of a tool invocation: the text fed
// back to the oracle plus any source identifiers usable as citations.
type Output struct {
	Content string
	Sources []string
}

// Descriptor pairs a tool's oracle-facing schema with its invocation
// function and declared side-effect class.
type Descriptor struct {
	Info       *schema.ToolInfo
	SideEffect SideEffect
	Invoke     func(ctx context.Context, arguments string) (*Output, error)
}

// Registry is the static catalog of available tools. Registration order is
// preserved so oracle-facing tool listings are reproducible across runs.
type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

// NewRegistry builds a registry from the given descriptors. The tool set is
// fixed at construction time; there is no runtime registration.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d == nil || d.Info == nil || d.Info.Name == "" {
			return nil, fmt.Errorf("registry: descriptor without a name")
		}
		if d.Invoke == nil {
			return nil, fmt.Errorf("registry: tool %q has no invocation function", d.Info.Name)
		}
		if _, dup := r.byName[d.Info.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate tool %q", d.Info.Name)
		}
		r.order = append(r.order, d.Info.Name)
		r.byName[d.Info.Name] = d
	}
	return r, nil
}

// Resolve returns the descriptor for name, or ErrUnknownTool.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return d, nil
}

// ForOracle returns all registered tool schemas in registration order.
func (r *Registry) ForOracle() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.byName[name].Info)
	}
	return infos
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
