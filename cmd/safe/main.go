package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/bench"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/candidate"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/collect"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/config"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/generate"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/harness"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/metrics"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/probe"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/report"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/store"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	appendFunc       = store.AppendLocked
	probeFunc        = probe.New
	newCompleterFunc = newOpenAICompleter
	newLoggerFunc    = newLogger
	verbose          bool
)

func newOpenAICompleter(cfg config.Generation) (generate.Completer, error) {
	c, err := generate.NewOpenAICompleter(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "safe",
		Short:         "SaFE API pair verification and benchmarking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human-readable debug logging")
	root.AddCommand(newInitCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newPairsCommand())
	root.AddCommand(newShowCommand())
	root.AddCommand(newSearchCommand())
	root.AddCommand(newCrawlCommand())
	root.AddCommand(newGenerateCommand())
	return root
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default safe.yaml",
		RunE: func(_ *cobra.Command, _ []string) error {
			ok, err := store.Exists(config.DefaultPath)
			if err != nil {
				return err
			}
			if !ok {
				if err := os.WriteFile(config.DefaultPath, []byte(config.DefaultYAML), 0o644); err != nil {
					return err
				}
			}
			fmt.Println("initialized safe config")
			return nil
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return config.Config{}, cliError{code: harness.ExitConfig, err: err}
	}
	return cfg, nil
}

func newRunCommand() *cobra.Command {
	var cfgPath, pair, output, scales, probeKind, mode, reportPath, textfile string
	var trials int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify a candidate pair and append its benchmark row",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("pair") {
				cfg.Pair = pair
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if flags.Changed("scales") {
				s, err := types.ParseScaleSet(scales)
				if err != nil {
					return cliError{code: harness.ExitConfig, err: err}
				}
				cfg.Scales = s
			}
			if flags.Changed("trials") {
				cfg.Trials = trials
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("probe") {
				cfg.Probe = probeKind
			}
			if flags.Changed("tolerance") {
				cfg.Tolerance.Mode = mode
			}
			if flags.Changed("report") {
				cfg.Report = reportPath
			}
			if flags.Changed("metrics-textfile") {
				cfg.MetricsTextfile = textfile
			}
			if err := cfg.Validate(); err != nil {
				return cliError{code: harness.ExitConfig, err: err}
			}
			tol, err := cfg.ResolveTolerance()
			if err != nil {
				return cliError{code: harness.ExitConfig, err: err}
			}
			builtin, err := candidate.Lookup(cfg.Pair)
			if err != nil {
				return cliError{code: harness.ExitConfig, err: err}
			}

			logger, err := newLoggerFunc()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			p, err := probeFunc(cfg.Probe)
			if err != nil {
				return cliError{code: harness.ExitMeasurementFail, err: err}
			}
			rep, evalErr := harness.Evaluate(builtin(cfg.Seed), harness.Options{
				Scales:    cfg.Scales,
				Tolerance: tol,
				Runner:    bench.NewRunner(p, cfg.Trials, logger),
				Logger:    logger,
			})
			rep.Destination = cfg.Output

			if err := store.EnsureParentDir(cfg.Output); err != nil {
				return cliError{code: harness.ExitPersistFail, err: err}
			}
			if err := appendFunc(rep.Row(), cfg.Output); err != nil {
				return cliError{code: harness.ExitPersistFail, err: fmt.Errorf("append result: %w", err)}
			}
			if cfg.Report != "" {
				if err := writeReport(cfg.Report, rep); err != nil {
					return err
				}
			}
			if cfg.MetricsTextfile != "" {
				if err := metrics.WriteTextfile(cfg.MetricsTextfile, rep); err != nil {
					return err
				}
			}
			if evalErr != nil {
				return cliError{code: harness.ExitMeasurementFail, err: evalErr}
			}
			fmt.Printf("Test completed, results appended to %s\n", cfg.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "suite config path")
	cmd.Flags().StringVar(&pair, "pair", "", "builtin pair name")
	cmd.Flags().StringVar(&output, "output", "", "result table (.xlsx or .csv)")
	cmd.Flags().StringVar(&scales, "scales", "", "comma-separated scale set")
	cmd.Flags().IntVar(&trials, "trials", bench.DefaultTrials, "timing trials per scale")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "input generator seed")
	cmd.Flags().StringVar(&probeKind, "probe", "", "memory probe (rss|heap)")
	cmd.Flags().StringVar(&mode, "tolerance", "", "closeness mode (default|strict)")
	cmd.Flags().StringVar(&reportPath, "report", "", "run report path (.json or .md)")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "prometheus textfile path")
	return cmd
}

func writeReport(path string, rep harness.Report) error {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return report.WriteMarkdown(path, rep)
	}
	return report.WriteJSON(path, rep)
}

func newPairsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List builtin candidate pairs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAPI1\tAPI2\tPACKAGE")
			for _, name := range candidate.Names() {
				b, err := candidate.Lookup(name)
				if err != nil {
					return err
				}
				p := b(0).Pair
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.API1, p.API2, p.Package)
			}
			return w.Flush()
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <table>",
		Short: "Print a result table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := store.Load(args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, row := range t.Matrix() {
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			return w.Flush()
		},
	}
}

func newSearchCommand() *cobra.Command {
	var cfgPath, outPath string
	var pageSize, maxPages int
	cmd := &cobra.Command{
		Use:   "search <query> <tag>",
		Short: "Search posts and save them as a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger, err := newLoggerFunc()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			query, tag := args[0], args[1]
			if outPath == "" {
				outPath = collect.OutputName(tag, query)
			}
			client := collect.NewClient(cfg.Search, nil, logger)
			t := client.SearchPosts(cmd.Context(), collect.SearchQuery{Query: query, Tag: tag, PageSize: pageSize, MaxPages: maxPages})
			if err := store.Write(outPath, t); err != nil {
				return err
			}
			fmt.Printf("Saved %d posts to %s\n", len(t.Rows), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "suite config path")
	cmd.Flags().StringVar(&outPath, "out", "", "output table (default <tag>_<query>.xlsx)")
	cmd.Flags().IntVar(&pageSize, "pagesize", 50, "posts per page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 2, "maximum pages to fetch")
	return cmd
}

func newCrawlCommand() *cobra.Command {
	var cfgPath, outPath string
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "crawl <posts-table>",
		Short: "Fetch answers for every post link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			in, err := store.Load(args[0])
			if err != nil {
				return err
			}
			logger, err := newLoggerFunc()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			out := collect.NewClient(cfg.Search, nil, logger).CrawlAnswers(cmd.Context(), in, delay)
			if err := store.Write(outPath, out); err != nil {
				return err
			}
			fmt.Printf("Saved answers to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "suite config path")
	cmd.Flags().StringVar(&outPath, "out", collect.DefaultCrawlOutput, "output table")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "wait between page requests")
	return cmd
}

func newGenerateCommand() *cobra.Command {
	var cfgPath, outPath string
	cmd := &cobra.Command{
		Use:   "generate <answers-table>",
		Short: "Ask a language model for candidate pairs and benchmark cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			t, err := store.Load(args[0])
			if err != nil {
				return err
			}
			completer, err := newCompleterFunc(cfg.Generation)
			if err != nil {
				return cliError{code: harness.ExitConfig, err: err}
			}
			logger, err := newLoggerFunc()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			failed := generate.GenerateAll(cmd.Context(), &t, completer, logger)
			if err := store.Write(outPath, t); err != nil {
				return err
			}
			fmt.Printf("Done! Results saved to %s (%d of %d rows failed)\n", outPath, failed, len(t.Rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", config.DefaultPath, "suite config path")
	cmd.Flags().StringVar(&outPath, "out", generate.DefaultOutput, "output table")
	return cmd
}
