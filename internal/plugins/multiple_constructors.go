package plugins

import (
	"context"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// multipleConstructors flags every constructor after the first in a contract,
// which old compilers accepted when mixing named and keyword constructors.
type multipleConstructors struct{}

func (d *multipleConstructors) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "multiple-constructors",
		Title:       "Multiple constructor schemes",
		Description: "A contract declares more than one constructor; only one of them runs.",
		Severity:    model.SeverityHigh,
	}
}

func (d *multipleConstructors) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen := false
		for _, fn := range functionsOf(contract) {
			if !fn.IsConstructor {
				continue
			}
			if seen {
				c.add("multiple constructor definitions detected", fn, contract.Name)
			}
			seen = true
		}
	}
	return c.violations(), nil
}
