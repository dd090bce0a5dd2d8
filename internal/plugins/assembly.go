package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

type assemblyUsage struct{}

func (d *assemblyUsage) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "assembly",
		Title:       "Assembly usage",
		Description: "Inline assembly bypasses the compiler's safety checks.",
		Severity:    model.SeverityInformational,
	}
}

func (d *assemblyUsage) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, fn := range functionsOf(contract) {
			name := functionName(fn)
			ast.Walk(fn.Body, ast.Visitor{
				InlineAssembly: func(asm *ast.InlineAssembly) {
					c.add(fmt.Sprintf("function %s uses assembly", name), asm, contract.Name)
				},
			})
		}
	}
	return c.violations(), nil
}
