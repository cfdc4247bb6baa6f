package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func stubDescriptor(name string) *Descriptor {
	return &Descriptor{
		Info:       &schema.ToolInfo{Name: name, Desc: "stub"},
		SideEffect: SideEffectCompute,
		Invoke: func(ctx context.Context, arguments string) (*Output, error) {
			return &Output{Content: "ok"}, nil
		},
	}
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(stubDescriptor(ToolSearchKnowledgeBase), stubDescriptor(ToolCalculate))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	d, err := r.Resolve(ToolCalculate)
	if err != nil {
		t.Fatalf("Resolve known tool: %v", err)
	}
	if d.Info.Name != ToolCalculate {
		t.Errorf("resolved wrong tool: %s", d.Info.Name)
	}

	if _, err := r.Resolve("format_disk"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestRegistryOracleListingIsRegistrationOrder(t *testing.T) {
	names := []string{ToolSearchKnowledgeBase, ToolSearchWeb, ToolSQLQueryGenerator, ToolCalculate}
	descs := make([]*Descriptor, 0, len(names))
	for _, n := range names {
		descs = append(descs, stubDescriptor(n))
	}
	r, err := NewRegistry(descs...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// The listing must be identical across calls and match registration order.
	for run := 0; run < 3; run++ {
		infos := r.ForOracle()
		if len(infos) != len(names) {
			t.Fatalf("run %d: got %d tools, want %d", run, len(infos), len(names))
		}
		for i, info := range infos {
			if info.Name != names[i] {
				t.Errorf("run %d: position %d = %s, want %s", run, i, info.Name, names[i])
			}
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewRegistry(stubDescriptor(ToolCalculate), stubDescriptor(ToolCalculate)); err == nil {
		t.Fatal("expected error for duplicate tool registration")
	}
}

func TestRegistryRejectsMissingInvoke(t *testing.T) {
	d := stubDescriptor(ToolCalculate)
	d.Invoke = nil
	if _, err := NewRegistry(d); err == nil {
		t.Fatal("expected error for descriptor without invocation function")
	}
}
