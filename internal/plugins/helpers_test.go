package plugins

import (
	"context"
	"testing"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// --- Helpers ---

func unit(contracts ...*ast.ContractDefinition) *ast.SourceUnit {
	return &ast.SourceUnit{Path: "Test.sol", Contracts: contracts}
}

func contract(name string, members ...ast.Node) *ast.ContractDefinition {
	return &ast.ContractDefinition{Name: name, ContractKind: ast.ContractKindContract, Members: members}
}

func function(name string, vis ast.Visibility, stmts ...ast.Node) *ast.FunctionDefinition {
	return &ast.FunctionDefinition{Name: name, Visibility: vis, Body: &ast.Block{Statements: stmts}}
}

func constructor(params ...*ast.VariableDeclaration) *ast.FunctionDefinition {
	return &ast.FunctionDefinition{IsConstructor: true, Visibility: ast.VisibilityPublic, Parameters: params, Body: &ast.Block{}}
}

func param(id int, name, typeName string) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{ID: id, Name: name, TypeName: typeName}
}

func ident(name string, ref int) *ast.Identifier {
	return &ast.Identifier{Name: name, ReferencedDeclaration: ref}
}

func call(expr ast.Node, args ...ast.Node) *ast.FunctionCall {
	return &ast.FunctionCall{Expression: expr, Arguments: args}
}

func member(expr ast.Node, name string) *ast.MemberAccess {
	return &ast.MemberAccess{Expression: expr, MemberName: name}
}

func stmt(children ...ast.Node) *ast.Generic {
	return &ast.Generic{NodeType: "ExpressionStatement", Children: children}
}

func detect(t *testing.T, id string, u *ast.SourceUnit) []model.Violation {
	t.Helper()
	d, ok := New(id)
	if !ok {
		t.Fatalf("unknown detector %q", id)
	}
	vs, err := d.Detect(context.Background(), u)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", id, err)
	}
	if vs == nil {
		t.Fatalf("%s: Detect returned nil, want empty slice", id)
	}
	for _, v := range vs {
		if v.DetectorID != id || v.Severity != d.Meta().Severity {
			t.Fatalf("%s: violation carries %s/%s", id, v.DetectorID, v.Severity)
		}
	}
	return vs
}

func requireViolations(t *testing.T, vs []model.Violation, count int) {
	t.Helper()
	if len(vs) != count {
		t.Fatalf("expected %d violations, got %d: %+v", count, len(vs), vs)
	}
}

func requireNoViolations(t *testing.T, vs []model.Violation) {
	t.Helper()
	if len(vs) > 0 {
		t.Fatalf("expected no violations, got %d: %+v", len(vs), vs)
	}
}
