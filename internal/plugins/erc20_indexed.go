package plugins

import (
	"context"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// erc20Events lists, per event, the parameter names expected to be indexed
// in position order.
var erc20Events = []struct {
	event  string
	params []string
}{
	{"Transfer", []string{"from", "to"}},
	{"Approval", []string{"owner", "spender"}},
}

type erc20Indexed struct{}

func (d *erc20Indexed) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "erc20-indexed",
		Title:       "Un-indexed ERC20 event parameters",
		Description: "ERC20 Transfer and Approval events should index their address parameters.",
		Severity:    model.SeverityInformational,
	}
}

func (d *erc20Indexed) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ast.MatchesKnownInterface(contract, ast.ERC20) {
			continue
		}
		for _, ev := range ast.Events([]*ast.ContractDefinition{contract}) {
			for _, want := range erc20Events {
				if ev.Name != want.event {
					continue
				}
				for i, param := range want.params {
					if i >= len(ev.Parameters) || ev.Parameters[i] == nil {
						break
					}
					if !ev.Parameters[i].Indexed {
						msg := "ERC20 " + ev.Name + " event should have indexed `" + param + "` parameter"
						c.add(msg, ev.Parameters[i], contract.Name)
					}
				}
			}
		}
	}
	return c.violations(), nil
}
