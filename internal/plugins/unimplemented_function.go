package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// unimplementedFunction flags base-contract functions a derived contract
// never redeclares.
type unimplementedFunction struct{}

func (d *unimplementedFunction) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "unimplemented-function",
		Title:       "Unimplemented functions",
		Description: "Functions declared by a base contract that the inheriting contract does not implement.",
		Severity:    model.SeverityInformational,
	}
}

func (d *unimplementedFunction) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	contracts := ast.Contracts(unit)
	// Public state variables only override functions from solc 0.5.1 on.
	getterOverride := !pragmaBelow(unit.PragmaVersion, 0, 5, 1)

	for _, contract := range contracts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bases := ast.InheritedContracts(contract, contracts)
		if len(bases) == 0 {
			continue
		}
		declared := make(map[string]bool)
		for _, fn := range functionsOf(contract) {
			declared[fn.Name] = true
		}
		if getterOverride {
			for _, v := range ast.StateVariables([]*ast.ContractDefinition{contract}) {
				declared[v.Name] = true
			}
		}
		for _, base := range bases {
			for _, fn := range functionsOf(base) {
				if fn.IsConstructor || fn.IsFallback || fn.IsReceive || fn.Name == "" || fn.Body == nil {
					continue
				}
				if declared[fn.Name] {
					continue
				}
				msg := fmt.Sprintf("%s does not implement %s.%s", contract.Name, base.Name, fn.Name)
				c.add(msg, fn, contract.Name)
			}
		}
	}
	return c.violations(), nil
}
