package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// arbitrarySendEth flags unguarded entry points that send ether to an
// address taken straight from their own parameters.
type arbitrarySendEth struct{}

func (d *arbitrarySendEth) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "arbitrary-send-eth",
		Title:       "Functions that send Ether to arbitrary destinations",
		Description: "A public or external function without access control transfers ether to an address supplied by the caller.",
		Severity:    model.SeverityHigh,
	}
}

func (d *arbitrarySendEth) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, fn := range functionsOf(contract) {
			if fn.Body == nil || fn.IsConstructor || !isPublicOrExternal(fn.Visibility) || ast.IsGuardedFunction(fn) {
				continue
			}
			params := newParamSet(fn.Parameters)
			if params.empty() {
				continue
			}
			name := functionName(fn)
			ast.Walk(fn.Body, ast.Visitor{
				FunctionCall: func(call *ast.FunctionCall) {
					recipient := valueRecipient(call)
					if recipient != nil && params.referencedBy(recipient) {
						msg := fmt.Sprintf("function %s sends ether to an arbitrary user-supplied address", name)
						c.add(msg, call, contract.Name)
					}
				},
			})
		}
	}
	return c.violations(), nil
}

// valueRecipient returns the address expression of an ether transfer:
// r.transfer(v), r.send(v) or r.call{value: v}(...). Other calls yield nil.
func valueRecipient(call *ast.FunctionCall) ast.Node {
	switch expr := call.Expression.(type) {
	case *ast.MemberAccess:
		if (expr.MemberName == "transfer" || expr.MemberName == "send") && len(call.Arguments) == 1 {
			return expr.Expression
		}
	case *ast.FunctionCallOptions:
		member, ok := expr.Expression.(*ast.MemberAccess)
		if !ok || member.MemberName != "call" {
			return nil
		}
		for _, n := range expr.Names {
			if n == "value" {
				return member.Expression
			}
		}
	}
	return nil
}

type paramSet struct {
	ids   map[int]bool
	names map[string]bool
}

func newParamSet(params []*ast.VariableDeclaration) paramSet {
	s := paramSet{ids: make(map[int]bool), names: make(map[string]bool)}
	for _, p := range params {
		if p == nil || p.Name == "" {
			continue
		}
		s.names[p.Name] = true
		if p.ID != 0 {
			s.ids[p.ID] = true
		}
	}
	return s
}

func (s paramSet) empty() bool { return len(s.names) == 0 }

// referencedBy reports whether expr mentions one of the parameters. Resolved
// identifiers are matched by declaration id, unresolved ones by name.
func (s paramSet) referencedBy(expr ast.Node) bool {
	found := false
	ast.Walk(expr, ast.Visitor{
		Identifier: func(id *ast.Identifier) {
			if id.ReferencedDeclaration != 0 && len(s.ids) > 0 {
				if s.ids[id.ReferencedDeclaration] {
					found = true
				}
				return
			}
			if s.names[id.Name] {
				found = true
			}
		},
	})
	return found
}
