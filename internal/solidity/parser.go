package solidity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/cache"
)

// cacheTag versions the cached solc output format.
const cacheTag = "solc-ast-v1"

// ParseFile runs solc on a Solidity file and decodes its compact AST. Output
// is cached by compiler, path and file content.
func ParseFile(ctx context.Context, path, solcPath string) (*ast.SourceUnit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	data, err := compile(ctx, solcPath, abs, nil, cache.Key(cacheTag, solcPath, abs, string(src)))
	if err != nil {
		return nil, err
	}
	unit, err := Decode(data, string(src))
	if err != nil {
		return nil, withPath(err, path)
	}
	unit.Path = path
	return unit, nil
}

// ParseSource compiles code passed on solc's stdin.
func ParseSource(ctx context.Context, code, solcPath string) (*ast.SourceUnit, error) {
	data, err := compile(ctx, solcPath, "-", strings.NewReader(code), cache.Key(cacheTag, solcPath, "<stdin>", code))
	if err != nil {
		return nil, err
	}
	return Decode(data, code)
}

// LoadAST decodes a compact-JSON AST produced earlier, e.g. by
// `solc --ast-compact-json`. The Solidity source is picked up from the
// unit's absolutePath when it can be found.
func LoadAST(path string) (*ast.SourceUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	js, err := extractJSON(data, "")
	if err != nil {
		return nil, withPath(err, path)
	}
	unit, err := Decode(js, "")
	if err != nil {
		return nil, withPath(err, path)
	}
	if unit.Path == "" {
		unit.Path = path
		return unit, nil
	}
	for _, candidate := range []string{unit.Path, filepath.Join(filepath.Dir(path), unit.Path)} {
		if b, err := os.ReadFile(candidate); err == nil {
			unit.Source = string(b)
			if v := ExtractPragmaVersion(unit.Source); v != "" {
				unit.PragmaVersion = v
			}
			break
		}
	}
	return unit, nil
}

func compile(ctx context.Context, solcPath, target string, stdin *strings.Reader, key string) ([]byte, error) {
	if solcPath == "" {
		solcPath = "solc"
	}
	if cached, ok := cache.Load(key); ok {
		return cached, nil
	}
	cmd := exec.CommandContext(ctx, solcPath, "--ast-compact-json", target)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &ParseError{Path: target, Stderr: stderr.String(), Err: fmt.Errorf("running %s: %w", solcPath, err)}
	}
	js, err := extractJSON(out, target)
	if err != nil {
		return nil, &ParseError{Path: target, Stderr: stderr.String(), Err: err}
	}
	_ = cache.Store(key, js)
	return js, nil
}

// extractJSON picks the AST of path out of solc's human-oriented output,
// which prefixes a banner and emits one "======= file =======" section per
// source when imports are involved. Without a match the first section wins.
func extractJSON(out []byte, path string) ([]byte, error) {
	type section struct {
		name string
		body bytes.Buffer
	}
	var sections []*section
	for _, line := range bytes.SplitAfter(out, []byte("\n")) {
		t := strings.TrimSpace(string(line))
		if len(t) > 14 && strings.HasPrefix(t, "=======") && strings.HasSuffix(t, "=======") {
			sections = append(sections, &section{name: strings.TrimSpace(t[7 : len(t)-7])})
			continue
		}
		if len(sections) > 0 {
			sections[len(sections)-1].body.Write(line)
		}
	}

	body := out
	if len(sections) > 0 {
		chosen := sections[0]
		for _, s := range sections {
			if s.name == path || (path != "" && filepath.Base(s.name) == filepath.Base(path)) {
				chosen = s
				break
			}
		}
		body = chosen.body.Bytes()
	}
	i := bytes.IndexByte(body, '{')
	if i < 0 {
		return nil, errors.New("no JSON AST in solc output")
	}
	return bytes.TrimSpace(body[i:]), nil
}

func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
