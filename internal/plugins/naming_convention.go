package plugins

import (
	"context"
	"regexp"
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

const (
	conventionCapWords  = "expected CapWords"
	conventionMixedCase = "expected mixedCase"
	conventionUpperCase = "expected UPPER_CASE"
	conventionAmbiguous = "detected invalidName"
)

var (
	reCapWords            = regexp.MustCompile(`^[A-Z]([A-Za-z0-9]+)?_?$`)
	reMixedCase           = regexp.MustCompile(`^[a-z]([A-Za-z0-9]+)?_?$`)
	reMixedCaseUnderscore = regexp.MustCompile(`^_?[a-z]([A-Za-z0-9]+)?_?$`)
	reUpperCase           = regexp.MustCompile(`^[A-Z0-9_]+_?$`)
	reAmbiguous           = regexp.MustCompile(`^[lOI]$`)
)

// Constants with these names mirror token metadata getters and keep their
// lowercase spelling.
var tokenConstantNames = map[string]bool{"symbol": true, "name": true, "decimals": true}

// Fuzzing harness properties.
var exemptFunctionPrefixes = []string{"echidna_", "crytic_"}

// namingConvention checks declaration names against the Solidity style guide.
type namingConvention struct{}

func (d *namingConvention) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "naming-convention",
		Title:       "Solidity naming convention",
		Description: "Contracts, events, structs and enums use CapWords; functions, modifiers, parameters and variables use mixedCase; constants use UPPER_CASE.",
		Severity:    model.SeverityInformational,
	}
}

func (d *namingConvention) Detect(ctx context.Context, unit *ast.SourceUnit) ([]model.Violation, error) {
	c := newCollector(d.Meta())
	for _, contract := range ast.Contracts(unit) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		checkCapWords(c, "contract", contract.Name, contract, contract.Name)
		for _, m := range contract.Members {
			switch n := m.(type) {
			case *ast.StructDefinition:
				checkCapWords(c, "struct", n.Name, n, contract.Name)
				for _, field := range n.Members {
					if field != nil {
						checkAmbiguous(c, "variable", field.Name, field, contract.Name)
					}
				}
			case *ast.EventDefinition:
				checkCapWords(c, "event", n.Name, n, contract.Name)
			case *ast.EnumDefinition:
				checkCapWords(c, "enum", n.Name, n, contract.Name)
			case *ast.FunctionDefinition:
				checkFunction(c, n, contract.Name)
			case *ast.ModifierDefinition:
				if n.Name != "" && !checkAmbiguous(c, "modifier", n.Name, n, contract.Name) && !reMixedCase.MatchString(n.Name) {
					c.addTarget("modifier", n.Name, conventionMixedCase, n, contract.Name)
				}
			case *ast.StateVariableDeclaration:
				checkStateVariable(c, n, contract.Name)
			}
		}
	}
	return c.violations(), nil
}

// checkAmbiguous reports the names l, O and I, which are easily confused
// with digits.
func checkAmbiguous(c *collector, target, name string, node ast.Node, contract string) bool {
	if !reAmbiguous.MatchString(name) {
		return false
	}
	c.addTarget(target, name, conventionAmbiguous, node, contract)
	return true
}

func checkCapWords(c *collector, target, name string, node ast.Node, contract string) {
	if name == "" || checkAmbiguous(c, target, name, node, contract) {
		return
	}
	if !reCapWords.MatchString(name) {
		c.addTarget(target, name, conventionCapWords, node, contract)
	}
}

func checkFunction(c *collector, fn *ast.FunctionDefinition, contract string) {
	if !fn.IsConstructor && !fn.IsFallback && !fn.IsReceive && fn.Name != "" && !hasExemptPrefix(fn.Name) &&
		!checkAmbiguous(c, "function", fn.Name, fn, contract) {
		ok := reMixedCase.MatchString(fn.Name)
		if !ok && isInternalOrPrivate(fn.Visibility) {
			ok = reMixedCaseUnderscore.MatchString(fn.Name)
		}
		if !ok {
			c.addTarget("function", fn.Name, conventionMixedCase, fn, contract)
		}
	}
	for _, p := range fn.Parameters {
		if p == nil || p.Name == "" {
			continue
		}
		if checkAmbiguous(c, "parameter", p.Name, p, contract) {
			continue
		}
		if !reMixedCaseUnderscore.MatchString(p.Name) {
			c.addTarget("parameter", p.Name, conventionMixedCase, p, contract)
		}
	}
}

func checkStateVariable(c *collector, v *ast.StateVariableDeclaration, contract string) {
	if v.Name == "" {
		return
	}
	checkAmbiguous(c, "variable", v.Name, v, contract)
	if v.Constant {
		if tokenConstantNames[v.Name] || v.Visibility == ast.VisibilityPublic {
			return
		}
		if !reUpperCase.MatchString(v.Name) {
			c.addTarget("variable_constant", v.Name, conventionUpperCase, v, contract)
		}
		return
	}
	ok := reMixedCase.MatchString(v.Name)
	// State variables without an explicit visibility are internal.
	if !ok && (v.Visibility == ast.VisibilityDefault || isInternalOrPrivate(v.Visibility)) {
		ok = reMixedCaseUnderscore.MatchString(v.Name)
	}
	if !ok {
		c.addTarget("variable", v.Name, conventionMixedCase, v, contract)
	}
}

func isInternalOrPrivate(v ast.Visibility) bool {
	return v == ast.VisibilityInternal || v == ast.VisibilityPrivate
}

func hasExemptPrefix(name string) bool {
	for _, p := range exemptFunctionPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
