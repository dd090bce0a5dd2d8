package solidity

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
)

// rawNode is one object of solc's compact AST. Fields are decoded lazily
// because the same key holds different shapes across node types (e.g.
// "parameters" is an object on functions and an array on ParameterList).
type rawNode map[string]json.RawMessage

func (r rawNode) str(key string) string {
	var s string
	_ = json.Unmarshal(r[key], &s)
	return s
}

func (r rawNode) boolean(key string) bool {
	var b bool
	_ = json.Unmarshal(r[key], &b)
	return b
}

func (r rawNode) integer(key string) int {
	var n int
	_ = json.Unmarshal(r[key], &n)
	return n
}

func (r rawNode) strings(key string) []string {
	var s []string
	_ = json.Unmarshal(r[key], &s)
	return s
}

func (r rawNode) object(key string) rawNode {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	return asObject(raw)
}

func (r rawNode) list(key string) []rawNode {
	var items []json.RawMessage
	if err := json.Unmarshal(r[key], &items); err != nil {
		return nil
	}
	out := make([]rawNode, 0, len(items))
	for _, it := range items {
		if n := asObject(it); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (r rawNode) nodeType() string { return r.str("nodeType") }

func (r rawNode) src() ast.Src { return ast.ParseSrc(r.str("src")) }

func asObject(raw json.RawMessage) rawNode {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return n
}

// Decode converts solc compact-JSON AST output into a SourceUnit. source is
// the original text, used for line positions and inline suppressions; it may
// be empty.
func Decode(data []byte, source string) (*ast.SourceUnit, error) {
	if i := bytes.IndexByte(data, '{'); i > 0 {
		data = data[i:]
	}
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Err: err}
	}
	if root.nodeType() != "SourceUnit" {
		return nil, &ParseError{Path: root.str("absolutePath"), Err: errors.New("top-level node is not a SourceUnit")}
	}

	unit := &ast.SourceUnit{
		Src:    root.src(),
		Path:   root.str("absolutePath"),
		Source: source,
	}
	var pragma string
	for _, n := range root.list("nodes") {
		switch n.nodeType() {
		case "PragmaDirective":
			lits := n.strings("literals")
			if pragma == "" && len(lits) > 1 && lits[0] == "solidity" {
				pragma = "pragma solidity " + strings.Join(lits[1:], "") + ";"
			}
		case "ContractDefinition":
			unit.Contracts = append(unit.Contracts, decodeContract(n))
		}
	}
	if source != "" {
		unit.PragmaVersion = ExtractPragmaVersion(source)
	}
	if unit.PragmaVersion == "" {
		unit.PragmaVersion = ExtractPragmaVersion(pragma)
	}
	return unit, nil
}

func decodeContract(r rawNode) *ast.ContractDefinition {
	c := &ast.ContractDefinition{
		Src:          r.src(),
		Name:         r.str("name"),
		ContractKind: ast.ContractKind(r.str("contractKind")),
		Abstract:     r.boolean("abstract"),
	}
	for _, b := range r.list("baseContracts") {
		base := b.object("baseName")
		name := base.str("name")
		if name == "" {
			name = base.str("namePath")
		}
		if name != "" {
			c.BaseContracts = append(c.BaseContracts, name)
		}
	}
	for _, m := range r.list("nodes") {
		c.Members = append(c.Members, decodeMember(m))
	}
	return c
}

func decodeMember(r rawNode) ast.Node {
	switch r.nodeType() {
	case "FunctionDefinition":
		return decodeFunction(r)
	case "ModifierDefinition":
		return &ast.ModifierDefinition{
			Src:        r.src(),
			Name:       r.str("name"),
			Parameters: decodeParameters(r.object("parameters")),
			Body:       decodeBlock(r.object("body")),
		}
	case "EventDefinition":
		return &ast.EventDefinition{
			Src:        r.src(),
			Name:       r.str("name"),
			Parameters: decodeParameters(r.object("parameters")),
		}
	case "StructDefinition":
		s := &ast.StructDefinition{Src: r.src(), Name: r.str("name")}
		for _, m := range r.list("members") {
			s.Members = append(s.Members, decodeVariable(m))
		}
		return s
	case "EnumDefinition":
		e := &ast.EnumDefinition{Src: r.src(), Name: r.str("name")}
		for _, m := range r.list("members") {
			e.Values = append(e.Values, m.str("name"))
		}
		return e
	case "VariableDeclaration":
		mutability := r.str("mutability")
		return &ast.StateVariableDeclaration{
			Src:        r.src(),
			ID:         r.integer("id"),
			Name:       r.str("name"),
			TypeName:   typeString(r),
			Visibility: ast.Visibility(r.str("visibility")),
			Constant:   r.boolean("constant") || mutability == "constant",
			Immutable:  mutability == "immutable",
			Value:      decodeNode(r.object("value")),
		}
	}
	return decodeGeneric(r)
}

func decodeFunction(r rawNode) *ast.FunctionDefinition {
	kind := r.str("kind")
	fn := &ast.FunctionDefinition{
		Src:             r.src(),
		Name:            r.str("name"),
		Visibility:      ast.Visibility(r.str("visibility")),
		StateMutability: r.str("stateMutability"),
		Parameters:      decodeParameters(r.object("parameters")),
		Returns:         decodeParameters(r.object("returnParameters")),
		IsConstructor:   kind == "constructor" || r.boolean("isConstructor"),
		IsFallback:      kind == "fallback",
		IsReceive:       kind == "receive",
		Selector:        r.str("functionSelector"),
		Body:            decodeBlock(r.object("body")),
	}
	// Pre-0.5 ASTs have no kind; the unnamed function is the fallback.
	if kind == "" && fn.Name == "" && !fn.IsConstructor {
		fn.IsFallback = true
	}
	if fn.StateMutability == "" && r.boolean("constant") {
		fn.StateMutability = "view"
	}
	for _, m := range r.list("modifiers") {
		fn.Modifiers = append(fn.Modifiers, &ast.ModifierInvocation{
			Src:       m.src(),
			Name:      m.object("modifierName").str("name"),
			Arguments: decodeNodes(m.list("arguments")),
		})
	}
	return fn
}

func decodeParameters(list rawNode) []*ast.VariableDeclaration {
	if list == nil {
		return nil
	}
	var out []*ast.VariableDeclaration
	for _, p := range list.list("parameters") {
		out = append(out, decodeVariable(p))
	}
	return out
}

func decodeVariable(r rawNode) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		Src:      r.src(),
		ID:       r.integer("id"),
		Name:     r.str("name"),
		TypeName: typeString(r),
		Indexed:  r.boolean("indexed"),
	}
}

func typeString(r rawNode) string {
	if s := r.object("typeDescriptions").str("typeString"); s != "" {
		return s
	}
	return r.object("typeName").str("name")
}

func decodeBlock(r rawNode) *ast.Block {
	if r == nil {
		return nil
	}
	return &ast.Block{
		Src:        r.src(),
		Unchecked:  r.nodeType() == "UncheckedBlock",
		Statements: decodeNodes(r.list("statements")),
	}
}

func decodeYulBlock(r rawNode) *ast.YulBlock {
	if r == nil {
		return nil
	}
	return &ast.YulBlock{Src: r.src(), Statements: decodeNodes(r.list("statements"))}
}

func decodeNodes(list []rawNode) []ast.Node {
	out := make([]ast.Node, 0, len(list))
	for _, r := range list {
		if n := decodeNode(r); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// decodeNode maps a statement or expression onto the typed tree. Node types
// the detectors never inspect by shape become Generic.
func decodeNode(r rawNode) ast.Node {
	if r == nil || r.nodeType() == "" {
		return nil
	}
	switch r.nodeType() {
	case "Block", "UncheckedBlock":
		return decodeBlock(r)
	case "InlineAssembly":
		return &ast.InlineAssembly{Src: r.src(), Body: decodeYulBlock(r.object("AST"))}
	case "YulBlock":
		return decodeYulBlock(r)
	case "YulFunctionCall":
		return &ast.YulFunctionCall{
			Src:          r.src(),
			FunctionName: r.object("functionName").str("name"),
			Arguments:    decodeNodes(r.list("arguments")),
		}
	case "YulIdentifier":
		return &ast.YulIdentifier{Src: r.src(), Name: r.str("name")}
	case "YulLiteral":
		value := r.str("value")
		if value == "" {
			value = r.str("hexValue")
		}
		return &ast.YulLiteral{Src: r.src(), LiteralKind: r.str("kind"), Value: value}
	case "FunctionCall":
		return &ast.FunctionCall{
			Src:        r.src(),
			Expression: decodeNode(r.object("expression")),
			Arguments:  decodeNodes(r.list("arguments")),
		}
	case "FunctionCallOptions":
		return &ast.FunctionCallOptions{
			Src:        r.src(),
			Expression: decodeNode(r.object("expression")),
			Names:      r.strings("names"),
			Options:    decodeNodes(r.list("options")),
		}
	case "MemberAccess":
		return &ast.MemberAccess{
			Src:        r.src(),
			Expression: decodeNode(r.object("expression")),
			MemberName: r.str("memberName"),
		}
	case "Identifier":
		return &ast.Identifier{Src: r.src(), Name: r.str("name"), ReferencedDeclaration: r.integer("referencedDeclaration")}
	case "Literal":
		return &ast.Literal{Src: r.src(), LiteralKind: r.str("kind"), Value: r.str("value")}
	case "VariableDeclaration":
		return decodeVariable(r)
	}
	return decodeGeneric(r)
}

// Keys whose nodes carry no statements or expressions.
var skippedKeys = map[string]bool{"documentation": true, "typeDescriptions": true}

func decodeGeneric(r rawNode) *ast.Generic {
	g := &ast.Generic{Src: r.src(), NodeType: r.nodeType()}
	keys := make([]string, 0, len(r))
	for k := range r {
		if !skippedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw := bytes.TrimSpace(r[k])
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '{':
			if n := decodeNode(asObject(raw)); n != nil {
				g.Children = append(g.Children, n)
			}
		case '[':
			g.Children = append(g.Children, decodeNodes(r.list(k))...)
		}
	}
	sort.SliceStable(g.Children, func(i, j int) bool {
		return g.Children[i].Range().Offset < g.Children[j].Range().Offset
	})
	return g
}
