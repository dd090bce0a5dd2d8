package plugins

import (
	"testing"

	"github.com/xab-mack/nexeth/internal/ast"
)

func TestIncorrectShift(t *testing.T) {
	tests := []struct {
		name  string
		shift *ast.YulFunctionCall
		bad   bool
	}{
		{"nested call then literal", yulCall("shl", yulCall("mload", yulNumber("0")), yulNumber("8")), true},
		{"identifier then literal", yulCall("shr", &ast.YulIdentifier{Name: "x"}, yulNumber("8")), true},
		{"sar", yulCall("sar", yulCall("calldataload", yulNumber("4")), yulNumber("1")), true},
		{"correct order", yulCall("shl", yulNumber("8"), &ast.YulIdentifier{Name: "x"}), false},
		{"both literals", yulCall("shl", yulNumber("8"), yulNumber("1")), false},
		{"string literal", yulCall("shl", &ast.YulIdentifier{Name: "x"}, &ast.YulLiteral{LiteralKind: "string", Value: "8"}), false},
		{"other opcode", yulCall("add", &ast.YulIdentifier{Name: "x"}, yulNumber("8")), false},
		{"wrong arity", yulCall("shl", &ast.YulIdentifier{Name: "x"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := function("encode", ast.VisibilityInternal, asmBlock(yulCall("mstore", yulNumber("0"), tt.shift)))
			vs := detect(t, "incorrect-shift", unit(contract("Codec", fn)))
			if !tt.bad {
				requireNoViolations(t, vs)
				return
			}
			requireViolations(t, vs, 1)
			if vs[0].Message != "function encode contains an incorrect shift operation" || vs[0].Node != tt.shift {
				t.Errorf("unexpected violation %+v", vs[0])
			}
		})
	}
}
