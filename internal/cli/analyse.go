package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xab-mack/nexeth/internal/engine"
	"github.com/xab-mack/nexeth/internal/model"
	"github.com/xab-mack/nexeth/internal/report"
	"github.com/xab-mack/nexeth/internal/store"
	"github.com/xab-mack/nexeth/internal/tui"
)

type analyseOptions struct {
	disable       []string
	format        string
	out           string
	failOn        string
	timeoutMs     int
	concurrency   int
	baseline      string
	writeBaseline string
	store         string
	solc          string
	useTUI        bool
}

func newAnalyseCmd(g *globals) *cobra.Command {
	var opts analyseOptions
	cmd := &cobra.Command{
		Use:     "analyse <file.sol|ast.json|->",
		Aliases: []string{"analyze"},
		Short:   "Run the detectors against a Solidity source file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyse(cmd, g, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.disable, "disable", nil, "Detector IDs to skip (comma separated)")
	f.StringVarP(&opts.format, "format", "f", "", "Report format: text|json|sarif (default: log events only)")
	f.StringVarP(&opts.out, "out", "o", "", "Write the report to a file instead of stdout")
	f.StringVar(&opts.failOn, "fail-on", "", "Exit non-zero when a violation at or above this severity remains (high|medium|low|informational|optimization)")
	f.IntVar(&opts.timeoutMs, "timeout-ms", 0, "Per-detector time limit in milliseconds (0 disables)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Maximum detectors running at once (0 uses every CPU)")
	f.StringVar(&opts.baseline, "baseline", "", "Drop violations whose fingerprint is in this baseline file")
	f.StringVar(&opts.writeBaseline, "write-baseline", "", "Write the fingerprints of the remaining violations to a file")
	f.StringVar(&opts.store, "store", "", "Record the run in a database (sqlite path or postgres DSN)")
	f.StringVar(&opts.solc, "solc", "", "Path to the solc binary")
	f.BoolVar(&opts.useTUI, "tui", false, "Browse violations interactively")
	return cmd
}

func runAnalyse(cmd *cobra.Command, g *globals, target string, opts analyseOptions) error {
	ctx := cmd.Context()
	rep := g.reporter(cmd)
	log := rep.Logger()

	cfg, cfgPath, err := loadConfig(target)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		log.Debug().Str("config", cfgPath).Msg("loaded configuration")
	}
	flags := cmd.Flags()
	cfg.DisabledDetectors = append(cfg.DisabledDetectors, opts.disable...)
	if flags.Changed("timeout-ms") {
		cfg.DetectorTimeoutMs = opts.timeoutMs
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("fail-on") {
		cfg.FailOn = opts.failOn
	}
	if flags.Changed("solc") {
		cfg.Solc = opts.solc
	}
	if flags.Changed("store") {
		cfg.Store = opts.store
	}

	var threshold model.Severity
	if cfg.FailOn != "" {
		sev, ok := model.ParseSeverity(cfg.FailOn)
		if !ok {
			return fmt.Errorf("invalid fail-on severity %q", cfg.FailOn)
		}
		threshold = sev
	}
	format := opts.format
	if format == "" && opts.out != "" {
		format = report.FormatJSON
	}

	unit, err := loadUnit(ctx, cmd.InOrStdin(), target, cfg.Solc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", target, err)
	}
	log.Info().Str("file", target).Str("pragma", unit.PragmaVersion).Int("contracts", len(unit.Contracts)).Msg("analysing")

	eng := engine.New(nil, rep)
	disabled := cfg.Disabled()
	for id := range disabled {
		if _, ok := eng.Registry().Lookup(id); !ok {
			log.Warn().Str("detector", id).Msg("unknown detector in disable list")
		}
	}

	filters := []engine.Filter{engine.IgnoreFilter(cfg)}
	if opts.baseline != "" {
		b, err := engine.LoadBaseline(opts.baseline)
		if err != nil {
			return err
		}
		filters = append(filters, engine.BaselineFilter(b))
	}

	result := eng.Analyse(ctx, unit, engine.Options{
		DisabledDetectors: disabled,
		DetectorTimeout:   cfg.DetectorTimeout(),
		Concurrency:       cfg.Concurrency,
		Filters:           filters,
	})

	if opts.writeBaseline != "" {
		if err := engine.WriteBaseline(opts.writeBaseline, result, unit); err != nil {
			return err
		}
		log.Info().Str("path", opts.writeBaseline).Int("fingerprints", result.Total).Msg("baseline written")
	}

	if cfg.Store != "" {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		run, err := s.SaveRun(ctx, unit, result)
		_ = s.Close()
		if err != nil {
			return err
		}
		log.Debug().Uint("run", run.ID).Msg("run recorded")
	}

	doc := report.Build(unit, result)
	switch {
	case opts.useTUI:
		if err := tui.Run(doc); err != nil {
			return err
		}
	case format != "":
		if err := writeReport(cmd, eng, format, opts.out, doc); err != nil {
			return err
		}
	}

	if threshold != "" && engine.ExceedsThreshold(result, threshold) {
		return fmt.Errorf("fail-on threshold met: %d violation(s) at or above %s", engine.FilterBySeverity(result, threshold).Total, threshold)
	}
	return nil
}

func writeReport(cmd *cobra.Command, eng *engine.Engine, format, out string, doc report.Document) error {
	var rules []model.RuleMeta
	for _, d := range eng.Registry().Detectors() {
		rules = append(rules, d.Meta())
	}

	var w io.Writer = cmd.OutOrStdout()
	color := false
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer f.Close()
		w = f
	} else if f, ok := w.(*os.File); ok {
		color = isTerminal(f)
	}
	return report.Render(w, format, doc, rules, color)
}
