package ast

import "reflect"

// Visitor is a dispatch table keyed by node type. Walk calls the matching
// callback for every node it reaches; nil entries are skipped.
type Visitor struct {
	Contract            func(*ContractDefinition)
	Function            func(*FunctionDefinition)
	Modifier            func(*ModifierDefinition)
	Event               func(*EventDefinition)
	Struct              func(*StructDefinition)
	Enum                func(*EnumDefinition)
	StateVariable       func(*StateVariableDeclaration)
	Variable            func(*VariableDeclaration)
	ModifierInvocation  func(*ModifierInvocation)
	Block               func(*Block)
	InlineAssembly      func(*InlineAssembly)
	YulBlock            func(*YulBlock)
	YulFunctionCall     func(*YulFunctionCall)
	YulIdentifier       func(*YulIdentifier)
	YulLiteral          func(*YulLiteral)
	FunctionCall        func(*FunctionCall)
	FunctionCallOptions func(*FunctionCallOptions)
	MemberAccess        func(*MemberAccess)
	Identifier          func(*Identifier)
	Literal             func(*Literal)
	Generic             func(*Generic)
}

// Walk traverses n depth-first, pre-order, including n itself.
func Walk(n Node, v Visitor) {
	if isNil(n) {
		return
	}
	v.visit(n)
	for _, c := range Children(n) {
		Walk(c, v)
	}
}

func (v Visitor) visit(n Node) {
	switch n := n.(type) {
	case *SourceUnit:
	case *ContractDefinition:
		if v.Contract != nil {
			v.Contract(n)
		}
	case *FunctionDefinition:
		if v.Function != nil {
			v.Function(n)
		}
	case *ModifierDefinition:
		if v.Modifier != nil {
			v.Modifier(n)
		}
	case *EventDefinition:
		if v.Event != nil {
			v.Event(n)
		}
	case *StructDefinition:
		if v.Struct != nil {
			v.Struct(n)
		}
	case *EnumDefinition:
		if v.Enum != nil {
			v.Enum(n)
		}
	case *StateVariableDeclaration:
		if v.StateVariable != nil {
			v.StateVariable(n)
		}
	case *VariableDeclaration:
		if v.Variable != nil {
			v.Variable(n)
		}
	case *ModifierInvocation:
		if v.ModifierInvocation != nil {
			v.ModifierInvocation(n)
		}
	case *Block:
		if v.Block != nil {
			v.Block(n)
		}
	case *InlineAssembly:
		if v.InlineAssembly != nil {
			v.InlineAssembly(n)
		}
	case *YulBlock:
		if v.YulBlock != nil {
			v.YulBlock(n)
		}
	case *YulFunctionCall:
		if v.YulFunctionCall != nil {
			v.YulFunctionCall(n)
		}
	case *YulIdentifier:
		if v.YulIdentifier != nil {
			v.YulIdentifier(n)
		}
	case *YulLiteral:
		if v.YulLiteral != nil {
			v.YulLiteral(n)
		}
	case *FunctionCall:
		if v.FunctionCall != nil {
			v.FunctionCall(n)
		}
	case *FunctionCallOptions:
		if v.FunctionCallOptions != nil {
			v.FunctionCallOptions(n)
		}
	case *MemberAccess:
		if v.MemberAccess != nil {
			v.MemberAccess(n)
		}
	case *Identifier:
		if v.Identifier != nil {
			v.Identifier(n)
		}
	case *Literal:
		if v.Literal != nil {
			v.Literal(n)
		}
	case *Generic:
		if v.Generic != nil {
			v.Generic(n)
		}
	}
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if !isNil(c) {
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *SourceUnit:
		for _, c := range n.Contracts {
			add(c)
		}
	case *ContractDefinition:
		for _, c := range n.Members {
			add(c)
		}
	case *FunctionDefinition:
		for _, p := range n.Parameters {
			add(p)
		}
		for _, p := range n.Returns {
			add(p)
		}
		for _, m := range n.Modifiers {
			add(m)
		}
		add(n.Body)
	case *ModifierDefinition:
		for _, p := range n.Parameters {
			add(p)
		}
		add(n.Body)
	case *EventDefinition:
		for _, p := range n.Parameters {
			add(p)
		}
	case *StructDefinition:
		for _, m := range n.Members {
			add(m)
		}
	case *StateVariableDeclaration:
		add(n.Value)
	case *ModifierInvocation:
		for _, a := range n.Arguments {
			add(a)
		}
	case *Block:
		for _, s := range n.Statements {
			add(s)
		}
	case *InlineAssembly:
		add(n.Body)
	case *YulBlock:
		for _, s := range n.Statements {
			add(s)
		}
	case *YulFunctionCall:
		for _, a := range n.Arguments {
			add(a)
		}
	case *FunctionCall:
		add(n.Expression)
		for _, a := range n.Arguments {
			add(a)
		}
	case *FunctionCallOptions:
		add(n.Expression)
		for _, o := range n.Options {
			add(o)
		}
	case *MemberAccess:
		add(n.Expression)
	case *Generic:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}

// isNil catches typed nil pointers stored in a Node interface.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
