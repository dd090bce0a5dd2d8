package plugins

import (
	"context"
	"fmt"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// varReadUsingThis flags this.x() reads of the contract's own state, which
// turn a storage load into an external call. References that are not called,
// such as this.x.selector, are left alone.
type varReadUsingThis struct{}

func (d *varReadUsingThis) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "var-read-using-this",
		Title:       "State read through this",
		Description: "Reading a state variable or calling a view/pure function via this performs an external call; access it directly.",
		Severity:    model.SeverityOptimization,
	}
}

func (d *varReadUsingThis) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	contracts := ast.Contracts(unit)
	for _, contract := range contracts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		readable := readableMembers(contract, contracts)
		if len(readable) == 0 {
			continue
		}
		for _, fn := range functionsOf(contract) {
			name := functionName(fn)
			ast.Walk(fn.Body, ast.Visitor{
				FunctionCall: func(call *ast.FunctionCall) {
					member, ok := thisCallee(call)
					if !ok || !readable[member] {
						return
					}
					msg := fmt.Sprintf("function %s reads %s using this", name, member)
					c.add(msg, call, contract.Name)
				},
			})
		}
	}
	return c.violations(), nil
}

// thisCallee returns m when call invokes this.m, with or without call options.
func thisCallee(call *ast.FunctionCall) (string, bool) {
	callee := call.Expression
	if opts, ok := callee.(*ast.FunctionCallOptions); ok {
		callee = opts.Expression
	}
	m, ok := callee.(*ast.MemberAccess)
	if !ok {
		return "", false
	}
	id, ok := m.Expression.(*ast.Identifier)
	if !ok || id.Name != "this" {
		return "", false
	}
	return m.MemberName, true
}

// readableMembers collects the state variables and view/pure functions of
// contract and every base it transitively inherits from within contracts.
func readableMembers(contract *ast.ContractDefinition, contracts []*ast.ContractDefinition) map[string]bool {
	out := make(map[string]bool)
	visited := make(map[*ast.ContractDefinition]bool)
	queue := []*ast.ContractDefinition{contract}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, v := range ast.StateVariables([]*ast.ContractDefinition{cur}) {
			out[v.Name] = true
		}
		for _, fn := range functionsOf(cur) {
			if fn.Name != "" && (fn.StateMutability == "view" || fn.StateMutability == "pure") {
				out[fn.Name] = true
			}
		}
		queue = append(queue, ast.InheritedContracts(cur, contracts)...)
	}
	return out
}
