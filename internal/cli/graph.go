package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/engine"
	"github.com/xab-mack/nexeth/internal/graph"
)

func newGraphCmd(g *globals) *cobra.Command {
	var (
		uri, user, pass string
		clean           bool
	)
	cmd := &cobra.Command{
		Use:   "graph <file.sol|ast.json>",
		Short: "Load contracts, calls and violations into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("NEO4J_PASSWORD")
			}
			if pass == "" {
				return errors.New("--neo4j-pass is required")
			}
			ctx := cmd.Context()
			log := *g.reporter(cmd).Logger()

			cfg, _, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			unit, err := loadUnit(ctx, cmd.InOrStdin(), args[0], cfg.Solc)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			result := engine.New(nil, nil).Analyse(ctx, unit, engine.Options{
				DisabledDetectors: cfg.Disabled(),
				DetectorTimeout:   cfg.DetectorTimeout(),
				Concurrency:       cfg.Concurrency,
				Filters:           []engine.Filter{engine.IgnoreFilter(cfg)},
			})

			loader, err := graph.NewLoader(ctx, uri, user, pass, log)
			if err != nil {
				return err
			}
			defer loader.Close(ctx)

			if clean {
				if err := loader.Clean(ctx); err != nil {
					return fmt.Errorf("cleaning graph: %w", err)
				}
			}
			if err := loader.CreateIndexes(ctx); err != nil {
				return fmt.Errorf("creating indexes: %w", err)
			}
			gr := graph.Collect(unit, result)
			if err := loader.Load(ctx, gr); err != nil {
				return err
			}
			log.Info().
				Int("contracts", len(gr.Contracts)).
				Int("functions", len(gr.Functions)).
				Int("calls", len(gr.Calls)).
				Int("violations", len(gr.Violations)).
				Msg("graph loaded")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&uri, "neo4j-uri", "bolt://localhost:7687", "Neo4j bolt URI")
	f.StringVar(&user, "neo4j-user", "neo4j", "Neo4j username")
	f.StringVar(&pass, "neo4j-pass", "", "Neo4j password (or NEO4J_PASSWORD)")
	f.BoolVar(&clean, "clean", false, "Remove previously loaded graph data first")
	return cmd
}
