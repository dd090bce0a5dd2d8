package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// suicidal flags functions that can destroy the contract without an access
// control modifier.
type suicidal struct{}

func (d *suicidal) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "suicidal",
		Title:       "Unprotected selfdestruct",
		Description: "A function calls selfdestruct (or suicide) without an onlyOwner, onlyRole or onlyAdmin guard.",
		Severity:    model.SeverityHigh,
	}
}

func (d *suicidal) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, fn := range functionsOf(contract) {
			if fn.Body == nil || ast.IsGuardedFunction(fn) {
				continue
			}
			if callsSelfdestruct(fn.Body) {
				msg := fmt.Sprintf("function %s allows anyone to destruct the contract", functionName(fn))
				c.add(msg, fn, contract.Name)
			}
		}
	}
	return c.violations(), nil
}

func callsSelfdestruct(body *ast.Block) bool {
	found := false
	ast.Walk(body, ast.Visitor{
		FunctionCall: func(call *ast.FunctionCall) {
			if id, ok := call.Expression.(*ast.Identifier); ok && (id.Name == "selfdestruct" || id.Name == "suicide") {
				found = true
			}
		},
	})
	return found
}
