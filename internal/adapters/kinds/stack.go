package kinds

import (
	"context"
	"io"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

// Stack aggregates its dependencies. It stages nothing and has no output.
type Stack struct {
	base
}

// NewStack creates a stack kind.
func NewStack() *Stack {
	return &Stack{}
}

// Configure implements ports.Kind. A stack takes no configuration.
func (s *Stack) Configure(node domain.Node) error {
	return node.ValidateKeys()
}

// LayoutAdd is a no-op: nothing is staged for a stack.
func (s *Stack) LayoutAdd(domain.InternedString, string) {}

// Assemble implements ports.Kind.
func (s *Stack) Assemble(ctx context.Context, _ ports.Sandbox, _, _ io.Writer) (string, error) {
	return "", ctx.Err()
}
