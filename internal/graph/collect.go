// Package graph exports the contract structure of a source unit, with its
// violations, into Neo4j.
package graph

import (
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/engine"
	"github.com/xab-mack/nexeth/internal/model"
)

type ContractNode struct {
	Key      string
	Name     string
	Kind     string
	Abstract bool
	File     string
	Line     int
}

type FunctionNode struct {
	Key        string
	Contract   string // contract key
	Name       string
	Visibility string
	Mutability string
	Selector   string
	Line       int
}

// InheritEdge links a contract to one of its direct bases. Order is the
// position in the inheritance list.
type InheritEdge struct {
	Child  string
	Parent string
	Name   string
	Order  int
}

type CallEdge struct {
	Caller string
	Callee string
}

type ViolationNode struct {
	Fingerprint string
	DetectorID  string
	Severity    string
	Message     string
	Contract    string // contract key
	Line        int
}

type Graph struct {
	Contracts  []ContractNode
	Functions  []FunctionNode
	Inherits   []InheritEdge
	Calls      []CallEdge
	Violations []ViolationNode
}

func contractKey(file, name string) string { return file + ":" + name }

// functionKey distinguishes overloads by their parameter types.
func functionKey(contract string, fn *ast.FunctionDefinition) string {
	types := make([]string, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		types = append(types, p.TypeName)
	}
	return contract + "." + displayName(fn) + "(" + strings.Join(types, ",") + ")"
}

func displayName(fn *ast.FunctionDefinition) string {
	switch {
	case fn.IsConstructor:
		return "constructor"
	case fn.IsFallback:
		return "fallback"
	case fn.IsReceive:
		return "receive"
	}
	return fn.Name
}

// Collect builds the graph of unit. result may be nil.
func Collect(unit *ast.SourceUnit, result *model.DetectorResult) *Graph {
	g := &Graph{}
	all := ast.Contracts(unit)
	keys := make(map[*ast.FunctionDefinition]string)

	for _, c := range all {
		ck := contractKey(unit.Path, c.Name)
		g.Contracts = append(g.Contracts, ContractNode{
			Key:      ck,
			Name:     c.Name,
			Kind:     string(c.ContractKind),
			Abstract: c.Abstract,
			File:     unit.Path,
			Line:     unit.Position(c.Src).Line,
		})
		for _, fn := range ast.Functions([]*ast.ContractDefinition{c}) {
			fk := functionKey(ck, fn)
			keys[fn] = fk
			g.Functions = append(g.Functions, FunctionNode{
				Key:        fk,
				Contract:   ck,
				Name:       displayName(fn),
				Visibility: string(fn.Visibility),
				Mutability: fn.StateMutability,
				Selector:   fn.Selector,
				Line:       unit.Position(fn.Src).Line,
			})
		}
		for i, base := range c.BaseContracts {
			g.Inherits = append(g.Inherits, InheritEdge{
				Child:  ck,
				Parent: contractKey(unit.Path, base),
				Name:   base,
				Order:  i,
			})
		}
	}

	for _, c := range all {
		scope := lineage(c, all)
		for _, fn := range ast.Functions([]*ast.ContractDefinition{c}) {
			g.Calls = append(g.Calls, calls(fn, keys[fn], scope, keys)...)
		}
	}

	if result != nil {
		for _, v := range result.All() {
			g.Violations = append(g.Violations, ViolationNode{
				Fingerprint: engine.Fingerprint(unit, v),
				DetectorID:  v.DetectorID,
				Severity:    string(v.Severity),
				Message:     v.Message,
				Contract:    contractKey(unit.Path, v.Contract),
				Line:        unit.Position(v.Src).Line,
			})
		}
	}
	return g
}

// lineage returns c followed by its transitive bases, nearest first.
func lineage(c *ast.ContractDefinition, all []*ast.ContractDefinition) []*ast.ContractDefinition {
	out := []*ast.ContractDefinition{c}
	seen := map[*ast.ContractDefinition]bool{c: true}
	for i := 0; i < len(out); i++ {
		for _, b := range ast.InheritedContracts(out[i], all) {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}

// calls resolves direct calls (f()) and self calls (this.f()) in fn by name
// against scope. The first contract in scope declaring the name wins.
func calls(fn *ast.FunctionDefinition, caller string, scope []*ast.ContractDefinition, keys map[*ast.FunctionDefinition]string) []CallEdge {
	if fn.Body == nil {
		return nil
	}
	var out []CallEdge
	seen := make(map[string]bool)
	ast.Walk(fn.Body, ast.Visitor{FunctionCall: func(call *ast.FunctionCall) {
		name := ""
		switch e := call.Expression.(type) {
		case *ast.Identifier:
			name = e.Name
		case *ast.MemberAccess:
			if id, ok := e.Expression.(*ast.Identifier); ok && id.Name == "this" {
				name = e.MemberName
			}
		}
		if name == "" {
			return
		}
		callee := resolve(name, len(call.Arguments), scope)
		if callee == nil || seen[keys[callee]] {
			return
		}
		seen[keys[callee]] = true
		out = append(out, CallEdge{Caller: caller, Callee: keys[callee]})
	}})
	return out
}

func resolve(name string, args int, scope []*ast.ContractDefinition) *ast.FunctionDefinition {
	var byName *ast.FunctionDefinition
	for _, c := range scope {
		for _, fn := range ast.Functions([]*ast.ContractDefinition{c}) {
			if fn.Name != name || fn.IsConstructor {
				continue
			}
			if len(fn.Parameters) == args {
				return fn
			}
			if byName == nil {
				byName = fn
			}
		}
	}
	return byName
}
