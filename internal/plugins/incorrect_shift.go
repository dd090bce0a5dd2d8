package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

var shiftOps = map[string]bool{"shl": true, "shr": true, "sar": true}

// incorrectShift flags Yul shifts written as shl(value, bits). The opcodes
// take the shift amount first.
type incorrectShift struct{}

func (d *incorrectShift) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "incorrect-shift",
		Title:       "Incorrect shift in assembly",
		Description: "shl, shr and sar take the shift amount as their first argument; a constant second argument usually means the operands are swapped.",
		Severity:    model.SeverityHigh,
	}
}

func (d *incorrectShift) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, fn := range functionsOf(contract) {
			name := functionName(fn)
			ast.Walk(fn.Body, ast.Visitor{
				YulFunctionCall: func(call *ast.YulFunctionCall) {
					if isSwappedShift(call) {
						c.add(fmt.Sprintf("function %s contains an incorrect shift operation", name), call, contract.Name)
					}
				},
			})
		}
	}
	return c.violations(), nil
}

func isSwappedShift(call *ast.YulFunctionCall) bool {
	if !shiftOps[call.FunctionName] || len(call.Arguments) != 2 {
		return false
	}
	switch call.Arguments[0].(type) {
	case *ast.YulFunctionCall, *ast.YulIdentifier:
	default:
		return false
	}
	lit, ok := call.Arguments[1].(*ast.YulLiteral)
	return ok && lit.LiteralKind == "number"
}
