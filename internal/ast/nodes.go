// Package ast holds the typed syntax tree consumed by detectors and the
// query helpers they share. Trees are produced by the solidity package and
// are read-only once built.
package ast

import (
	"strconv"
	"strings"
)

// Src is a solc source range ("offset:length:fileIndex").
type Src struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
	File   int `json:"file"`
}

// ParseSrc decodes a solc "o:l:f" string. Malformed input yields the zero
// range with File set to -1.
func ParseSrc(s string) Src {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return Src{File: -1}
	}
	off, err1 := strconv.Atoi(parts[0])
	ln, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Src{File: -1}
	}
	file := 0
	if len(parts) > 2 {
		if f, err := strconv.Atoi(parts[2]); err == nil {
			file = f
		}
	}
	return Src{Offset: off, Length: ln, File: file}
}

func (s Src) String() string {
	return strconv.Itoa(s.Offset) + ":" + strconv.Itoa(s.Length) + ":" + strconv.Itoa(s.File)
}

// Node is implemented only by the types in this package.
type Node interface {
	Kind() NodeKind
	Range() Src
	node()
}

type NodeKind int

const (
	KindSourceUnit NodeKind = iota
	KindContract
	KindFunction
	KindModifier
	KindEvent
	KindStruct
	KindEnum
	KindStateVariable
	KindVariable
	KindModifierInvocation
	KindBlock
	KindInlineAssembly
	KindYulBlock
	KindYulFunctionCall
	KindYulIdentifier
	KindYulLiteral
	KindFunctionCall
	KindFunctionCallOptions
	KindMemberAccess
	KindIdentifier
	KindLiteral
	KindGeneric
)

var kindNames = [...]string{
	KindSourceUnit:          "SourceUnit",
	KindContract:            "ContractDefinition",
	KindFunction:            "FunctionDefinition",
	KindModifier:            "ModifierDefinition",
	KindEvent:               "EventDefinition",
	KindStruct:              "StructDefinition",
	KindEnum:                "EnumDefinition",
	KindStateVariable:       "StateVariableDeclaration",
	KindVariable:            "VariableDeclaration",
	KindModifierInvocation:  "ModifierInvocation",
	KindBlock:               "Block",
	KindInlineAssembly:      "InlineAssembly",
	KindYulBlock:            "YulBlock",
	KindYulFunctionCall:     "YulFunctionCall",
	KindYulIdentifier:       "YulIdentifier",
	KindYulLiteral:          "YulLiteral",
	KindFunctionCall:        "FunctionCall",
	KindFunctionCallOptions: "FunctionCallOptions",
	KindMemberAccess:        "MemberAccess",
	KindIdentifier:          "Identifier",
	KindLiteral:             "Literal",
	KindGeneric:             "Generic",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type ContractKind string

const (
	ContractKindContract  ContractKind = "contract"
	ContractKindInterface ContractKind = "interface"
	ContractKindLibrary   ContractKind = "library"
)

type Visibility string

const (
	VisibilityDefault  Visibility = ""
	VisibilityPublic   Visibility = "public"
	VisibilityExternal Visibility = "external"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// SourceUnit is the root of one parsed compilation unit.
type SourceUnit struct {
	Src           Src
	Path          string
	Source        string
	PragmaVersion string
	Contracts     []*ContractDefinition
}

type ContractDefinition struct {
	Src           Src
	Name          string
	ContractKind  ContractKind
	Abstract      bool
	BaseContracts []string
	Members       []Node
}

type FunctionDefinition struct {
	Src             Src
	Name            string
	Visibility      Visibility
	StateMutability string
	Parameters      []*VariableDeclaration
	Returns         []*VariableDeclaration
	Modifiers       []*ModifierInvocation
	IsConstructor   bool
	IsFallback      bool
	IsReceive       bool
	// Selector is the 4-byte hex selector reported by solc, if any.
	Selector string
	Body     *Block
}

type ModifierDefinition struct {
	Src        Src
	Name       string
	Parameters []*VariableDeclaration
	Body       *Block
}

type EventDefinition struct {
	Src        Src
	Name       string
	Parameters []*VariableDeclaration
}

type StructDefinition struct {
	Src     Src
	Name    string
	Members []*VariableDeclaration
}

type EnumDefinition struct {
	Src    Src
	Name   string
	Values []string
}

type StateVariableDeclaration struct {
	Src        Src
	ID         int
	Name       string
	TypeName   string
	Visibility Visibility
	Constant   bool
	Immutable  bool
	Value      Node
}

// VariableDeclaration is a parameter, struct member or local variable.
type VariableDeclaration struct {
	Src      Src
	ID       int
	Name     string
	TypeName string
	Indexed  bool
}

type ModifierInvocation struct {
	Src       Src
	Name      string
	Arguments []Node
}

type Block struct {
	Src        Src
	Unchecked  bool
	Statements []Node
}

type InlineAssembly struct {
	Src  Src
	Body *YulBlock
}

type YulBlock struct {
	Src        Src
	Statements []Node
}

type YulFunctionCall struct {
	Src          Src
	FunctionName string
	Arguments    []Node
}

type YulIdentifier struct {
	Src  Src
	Name string
}

type YulLiteral struct {
	Src Src
	// LiteralKind is "number", "string", "bool" or "hex".
	LiteralKind string
	Value       string
}

type FunctionCall struct {
	Src        Src
	Expression Node
	Arguments  []Node
}

// FunctionCallOptions is the `expr{value: v, gas: g}` part of a call.
type FunctionCallOptions struct {
	Src        Src
	Expression Node
	Names      []string
	Options    []Node
}

type MemberAccess struct {
	Src        Src
	Expression Node
	MemberName string
}

type Identifier struct {
	Src                   Src
	Name                  string
	ReferencedDeclaration int
}

type Literal struct {
	Src         Src
	LiteralKind string
	Value       string
}

// Generic stands in for every statement or expression the detectors do not
// inspect by shape. Children are kept in source order.
type Generic struct {
	Src      Src
	NodeType string
	Children []Node
}

func (*SourceUnit) Kind() NodeKind               { return KindSourceUnit }
func (*ContractDefinition) Kind() NodeKind       { return KindContract }
func (*FunctionDefinition) Kind() NodeKind       { return KindFunction }
func (*ModifierDefinition) Kind() NodeKind       { return KindModifier }
func (*EventDefinition) Kind() NodeKind          { return KindEvent }
func (*StructDefinition) Kind() NodeKind         { return KindStruct }
func (*EnumDefinition) Kind() NodeKind           { return KindEnum }
func (*StateVariableDeclaration) Kind() NodeKind { return KindStateVariable }
func (*VariableDeclaration) Kind() NodeKind      { return KindVariable }
func (*ModifierInvocation) Kind() NodeKind       { return KindModifierInvocation }
func (*Block) Kind() NodeKind                    { return KindBlock }
func (*InlineAssembly) Kind() NodeKind           { return KindInlineAssembly }
func (*YulBlock) Kind() NodeKind                 { return KindYulBlock }
func (*YulFunctionCall) Kind() NodeKind          { return KindYulFunctionCall }
func (*YulIdentifier) Kind() NodeKind            { return KindYulIdentifier }
func (*YulLiteral) Kind() NodeKind               { return KindYulLiteral }
func (*FunctionCall) Kind() NodeKind             { return KindFunctionCall }
func (*FunctionCallOptions) Kind() NodeKind      { return KindFunctionCallOptions }
func (*MemberAccess) Kind() NodeKind             { return KindMemberAccess }
func (*Identifier) Kind() NodeKind               { return KindIdentifier }
func (*Literal) Kind() NodeKind                  { return KindLiteral }
func (*Generic) Kind() NodeKind                  { return KindGeneric }

func (n *SourceUnit) Range() Src               { return n.Src }
func (n *ContractDefinition) Range() Src       { return n.Src }
func (n *FunctionDefinition) Range() Src       { return n.Src }
func (n *ModifierDefinition) Range() Src       { return n.Src }
func (n *EventDefinition) Range() Src          { return n.Src }
func (n *StructDefinition) Range() Src         { return n.Src }
func (n *EnumDefinition) Range() Src           { return n.Src }
func (n *StateVariableDeclaration) Range() Src { return n.Src }
func (n *VariableDeclaration) Range() Src      { return n.Src }
func (n *ModifierInvocation) Range() Src       { return n.Src }
func (n *Block) Range() Src                    { return n.Src }
func (n *InlineAssembly) Range() Src           { return n.Src }
func (n *YulBlock) Range() Src                 { return n.Src }
func (n *YulFunctionCall) Range() Src          { return n.Src }
func (n *YulIdentifier) Range() Src            { return n.Src }
func (n *YulLiteral) Range() Src               { return n.Src }
func (n *FunctionCall) Range() Src             { return n.Src }
func (n *FunctionCallOptions) Range() Src      { return n.Src }
func (n *MemberAccess) Range() Src             { return n.Src }
func (n *Identifier) Range() Src               { return n.Src }
func (n *Literal) Range() Src                  { return n.Src }
func (n *Generic) Range() Src                  { return n.Src }

func (*SourceUnit) node()               {}
func (*ContractDefinition) node()       {}
func (*FunctionDefinition) node()       {}
func (*ModifierDefinition) node()       {}
func (*EventDefinition) node()          {}
func (*StructDefinition) node()         {}
func (*EnumDefinition) node()           {}
func (*StateVariableDeclaration) node() {}
func (*VariableDeclaration) node()      {}
func (*ModifierInvocation) node()       {}
func (*Block) node()                    {}
func (*InlineAssembly) node()           {}
func (*YulBlock) node()                 {}
func (*YulFunctionCall) node()          {}
func (*YulIdentifier) node()            {}
func (*YulLiteral) node()               {}
func (*FunctionCall) node()             {}
func (*FunctionCallOptions) node()      {}
func (*MemberAccess) node()             {}
func (*Identifier) node()               {}
func (*Literal) node()                  {}
func (*Generic) node()                  {}

// Position is a 1-based line and column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Position resolves a source range against the unit's source text. It
// returns the zero Position when the text is unavailable or the offset is
// out of range.
func (u *SourceUnit) Position(src Src) Position {
	if u == nil || u.Source == "" || src.Offset < 0 || src.Offset > len(u.Source) {
		return Position{}
	}
	before := u.Source[:src.Offset]
	line := strings.Count(before, "\n") + 1
	col := src.Offset - strings.LastIndexByte(before, '\n')
	return Position{Line: line, Column: col}
}
