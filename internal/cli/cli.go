// Package cli wires the nexeth commands onto a cobra root.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/config"
	"github.com/xab-mack/nexeth/internal/logger"
	"github.com/xab-mack/nexeth/internal/solidity"
)

// globals holds flags shared by every command.
type globals struct {
	logFormat string
	verbose   bool
}

func AddCommands(root *cobra.Command) {
	g := &globals{}
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", logger.FormatPretty, "Log output: pretty|json")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Include debug log events")
	root.AddCommand(newAnalyseCmd(g))
	root.AddCommand(newRulesCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newGraphCmd(g))
}

func (g *globals) reporter(cmd *cobra.Command) *logger.Reporter {
	r := logger.New(cmd.ErrOrStderr(), g.logFormat)
	if g.verbose {
		r.SetLevel(zerolog.DebugLevel)
	}
	return r
}

// loadUnit parses a Solidity file with solc, or decodes a pre-generated
// compact AST when target ends in .json. A target of "-" compiles stdin.
func loadUnit(ctx context.Context, stdin io.Reader, target, solcPath string) (*ast.SourceUnit, error) {
	if target == "-" {
		code, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		unit, err := solidity.ParseSource(ctx, string(code), solcPath)
		if err != nil {
			return nil, err
		}
		unit.Path = "<stdin>"
		return unit, nil
	}
	if strings.EqualFold(filepath.Ext(target), ".json") {
		return solidity.LoadAST(target)
	}
	return solidity.ParseFile(ctx, target, solcPath)
}

// loadConfig reads the configuration governing target.
func loadConfig(target string) (config.Config, string, error) {
	dir := target
	if target == "-" {
		dir = "."
	} else if fi, err := os.Stat(target); err != nil || !fi.IsDir() {
		dir = filepath.Dir(target)
	}
	return config.Load(dir)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
