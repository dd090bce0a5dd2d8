package ast

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Contracts returns the top-level contracts, interfaces and libraries of u.
func Contracts(u *SourceUnit) []*ContractDefinition {
	if u == nil {
		return nil
	}
	out := make([]*ContractDefinition, 0, len(u.Contracts))
	for _, c := range u.Contracts {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// members flattens the members of type T across contracts, keeping
// per-contract then per-member order.
func members[T Node](contracts []*ContractDefinition) []T {
	var out []T
	for _, c := range contracts {
		if c == nil {
			continue
		}
		for _, m := range c.Members {
			if t, ok := m.(T); ok && !isNil(m) {
				out = append(out, t)
			}
		}
	}
	return out
}

func Functions(contracts []*ContractDefinition) []*FunctionDefinition {
	return members[*FunctionDefinition](contracts)
}

func Events(contracts []*ContractDefinition) []*EventDefinition {
	return members[*EventDefinition](contracts)
}

func Structs(contracts []*ContractDefinition) []*StructDefinition {
	return members[*StructDefinition](contracts)
}

func Enums(contracts []*ContractDefinition) []*EnumDefinition {
	return members[*EnumDefinition](contracts)
}

func Modifiers(contracts []*ContractDefinition) []*ModifierDefinition {
	return members[*ModifierDefinition](contracts)
}

func StateVariables(contracts []*ContractDefinition) []*StateVariableDeclaration {
	return members[*StateVariableDeclaration](contracts)
}

// InheritedContracts resolves the direct base names of c against all by exact
// name. Bases declared outside all (imports, libraries not in the unit) are
// silently dropped.
func InheritedContracts(c *ContractDefinition, all []*ContractDefinition) []*ContractDefinition {
	if c == nil || len(c.BaseContracts) == 0 {
		return nil
	}
	names := make(map[string]bool, len(c.BaseContracts))
	for _, b := range c.BaseContracts {
		names[b] = true
	}
	var out []*ContractDefinition
	for _, other := range all {
		if other == nil || other == c {
			continue
		}
		if names[other.Name] {
			out = append(out, other)
		}
	}
	return out
}

// GuardModifiers is the allow-list used by IsGuardedFunction.
var GuardModifiers = []string{"onlyOwner", "onlyRole", "onlyAdmin"}

// IsGuardedFunction reports whether fn carries a conventionally named access
// control modifier. Equivalent checks under other names are not recognized.
func IsGuardedFunction(fn *FunctionDefinition) bool {
	if fn == nil {
		return false
	}
	for _, m := range fn.Modifiers {
		if m == nil {
			continue
		}
		for _, g := range GuardModifiers {
			if m.Name == g {
				return true
			}
		}
	}
	return false
}

// KnownInterface describes a well-known contract shape by canonical function
// signatures ("transfer(address,uint256)") and event names.
type KnownInterface struct {
	Name      string
	Functions []string
	Events    []string
}

var ERC20 = KnownInterface{
	Name: "ERC20",
	Functions: []string{
		"totalSupply()",
		"balanceOf(address)",
		"transfer(address,uint256)",
		"transferFrom(address,address,uint256)",
		"approve(address,uint256)",
		"allowance(address,address)",
	},
	Events: []string{"Transfer", "Approval"},
}

// Selector returns the 4-byte function selector of a canonical signature as
// lowercase hex without prefix.
func Selector(signature string) string {
	return hex.EncodeToString(crypto.Keccak256([]byte(signature))[:4])
}

// MatchesKnownInterface reports whether c declares every function of iface
// with public or external visibility and every event by name. A selector
// recorded by the compiler must agree with the canonical signature.
func MatchesKnownInterface(c *ContractDefinition, iface KnownInterface) bool {
	if c == nil {
		return false
	}
	fns := Functions([]*ContractDefinition{c})
	for _, sig := range iface.Functions {
		name := sig
		if i := strings.IndexByte(sig, '('); i >= 0 {
			name = sig[:i]
		}
		want := Selector(sig)
		found := false
		for _, fn := range fns {
			if fn.Name != name {
				continue
			}
			if fn.Visibility != VisibilityPublic && fn.Visibility != VisibilityExternal {
				continue
			}
			if fn.Selector != "" && !strings.EqualFold(strings.TrimPrefix(fn.Selector, "0x"), want) {
				continue
			}
			found = true
			break
		}
		if !found {
			return false
		}
	}
	events := Events([]*ContractDefinition{c})
	for _, name := range iface.Events {
		found := false
		for _, ev := range events {
			if ev.Name == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
