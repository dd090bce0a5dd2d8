package plugins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/model"
)

// collector accumulates the violations of a single Detect call. Each call
// owns its collector, so nothing is shared between runs.
type collector struct {
	meta model.RuleMeta
	out  []model.Violation
}

func newCollector(meta model.RuleMeta) *collector {
	return &collector{meta: meta, out: []model.Violation{}}
}

func (c *collector) add(message string, node ast.Node, contract string) {
	c.out = append(c.out, c.violation(message, node, contract))
}

func (c *collector) addTarget(target, name, convention string, node ast.Node, contract string) {
	v := c.violation(fmt.Sprintf("%s %s: %s", target, name, convention), node, contract)
	v.Target = target
	v.Name = name
	v.Convention = convention
	c.out = append(c.out, v)
}

func (c *collector) violation(message string, node ast.Node, contract string) model.Violation {
	v := model.Violation{
		DetectorID: c.meta.ID,
		Severity:   c.meta.Severity,
		Message:    message,
		Contract:   contract,
		Node:       node,
	}
	if node != nil {
		v.Src = node.Range()
	}
	return v
}

func (c *collector) violations() []model.Violation { return c.out }

// functionName names fn for messages; special functions have no identifier.
func functionName(fn *ast.FunctionDefinition) string {
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

func isPublicOrExternal(v ast.Visibility) bool {
	return v == ast.VisibilityPublic || v == ast.VisibilityExternal
}

// functionsOf returns the function members of a single contract.
func functionsOf(c *ast.ContractDefinition) []*ast.FunctionDefinition {
	return ast.Functions([]*ast.ContractDefinition{c})
}

// pragmaBelow reports whether the normalized x.y.z version in pragma is
// strictly lower than major.minor.patch. Missing parts count as zero; an
// empty or malformed version is never below.
func pragmaBelow(pragma string, major, minor, patch int) bool {
	if pragma == "" {
		return false
	}
	parts := strings.Split(pragma, ".")
	if len(parts) > 3 {
		return false
	}
	got := [3]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return false
		}
		got[i] = n
	}
	want := [3]int{major, minor, patch}
	for i := range got {
		if got[i] != want[i] {
			return got[i] < want[i]
		}
	}
	return false
}
