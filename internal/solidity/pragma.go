package solidity

import "regexp"

var (
	rePragma  = regexp.MustCompile(`pragma\s+solidity\s+([^;]+);`)
	reVersion = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)
)

// ExtractPragmaVersion returns the first version named by the first
// `pragma solidity` directive of source, e.g. "0.4.24" for "^0.4.24" and
// "0.5.0" for ">=0.5.0 <0.7.0". It returns "" when there is none.
func ExtractPragmaVersion(source string) string {
	m := rePragma.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return reVersion.FindString(m[1])
}
