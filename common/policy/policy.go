package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// ListingPolicy evaluates mint preconditions as a CEL expression over the
// listing fields. The default policy enforces the 0.1 SUI price floor.
type ListingPolicy struct {
	expr string
	prg  cel.Program
}

// Listing holds the fields a policy expression can reference
type Listing struct {
	Price       uint64
	Name        string
	Description string
}

// Compile compiles a listing policy expression
func Compile(expr string) (*ListingPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("price", cel.UintType),
		cel.Variable("name", cel.StringType),
		cel.Variable("description", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &ListingPolicy{expr: expr, prg: prg}, nil
}

// Allows reports whether the listing satisfies the policy
func (p *ListingPolicy) Allows(listing Listing) (bool, error) {
	out, _, err := p.prg.Eval(map[string]interface{}{
		"price":       listing.Price,
		"name":        listing.Name,
		"description": listing.Description,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy expression did not return boolean, got %T", out.Value())
	}

	return result, nil
}

// Expression returns the source expression, for logging
func (p *ListingPolicy) Expression() string {
	return p.expr
}
