package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samba-sim/samba-sim/sim/batch"
)

var (
	configPath   string   // Batch YAML file
	envFile      string   // .env file with SAMBA_* defaults
	datasetFlags []string // name=path probability files
	outputDir    string
	batchSeed    int64
	workers      int
	budgets      []int
	iterations   int
	algorithms   []string
	epsilon      float64
	tau          float64
)

// runCmd executes a batch from the configuration file and flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every algorithm over every dataset entry and export the results",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveBatchConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting batch: %d datasets, budgets=%v, iterations=%d, algorithms=%v, seed=%d, workers=%d",
			len(cfg.Datasets), cfg.Budgets, cfg.Iterations, cfg.Algorithms, cfg.Seed, cfg.Workers)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		manifest, err := runBatch(ctx, cfg, newProgressPrinter(os.Stderr, cfg.Iterations).update)
		if err != nil {
			logrus.Fatalf("Batch failed: %v", err)
		}
		logrus.Infof("Batch %s complete: %d runs exported to %s in %v",
			manifest.BatchID, len(manifest.Runs), cfg.Output, time.Since(startTime).Round(time.Millisecond))
	},
}

// resolveBatchConfig layers built-in defaults, environment, the YAML file
// and explicitly set flags, in increasing precedence.
func resolveBatchConfig(cmd *cobra.Command) (BatchConfig, error) {
	cfg := DefaultBatchConfig()

	if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
		return cfg, fmt.Errorf("loading env file: %w", err)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if configPath != "" {
		if err := loadBatchConfig(configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		datasets, err := parseDatasetFlags(datasetFlags)
		if err != nil {
			return cfg, err
		}
		if cfg.Datasets == nil {
			cfg.Datasets = map[string]string{}
		}
		for name, path := range datasets {
			cfg.Datasets[name] = path
		}
	}
	if flags.Changed("output") {
		cfg.Output = outputDir
	}
	if flags.Changed("seed") {
		cfg.Seed = batchSeed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("budget") {
		cfg.Budgets = budgets
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("algorithms") {
		cfg.Algorithms = algorithms
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flags.Changed("tau") {
		cfg.Tau = tau
	}

	if err := validateBatchConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// runBatch loads the datasets, plans, runs and exports one batch.
func runBatch(ctx context.Context, cfg BatchConfig, progress batch.ProgressFunc) (*batch.Manifest, error) {
	var entries []batch.Entry
	for _, name := range cfg.datasetNames() {
		loaded, err := batch.LoadProbabilities(name, cfg.Datasets[name])
		if err != nil {
			return nil, err
		}
		logrus.Debugf("Dataset %s: %d probability vectors", name, len(loaded))
		entries = append(entries, loaded...)
	}

	plan, err := batch.NewPlan(entries, cfg.batchConfig())
	if err != nil {
		return nil, err
	}

	runner := batch.NewRunner(cfg.Workers)
	runner.Progress = progress
	runner.Metrics = batch.NewMetrics()
	results, err := runner.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	exporter := &batch.Exporter{Dir: cfg.Output, Metrics: runner.Metrics}
	return exporter.Export(plan, results)
}

// progressPrinter renders batch progress in place on a terminal, or as log
// lines otherwise.
type progressPrinter struct {
	w          io.Writer
	inPlace    bool
	iterations int
}

func newProgressPrinter(f *os.File, iterations int) *progressPrinter {
	fd := f.Fd()
	return &progressPrinter{
		w:          f,
		inPlace:    isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		iterations: iterations,
	}
}

func (p *progressPrinter) update(done, total int, job batch.Job) {
	if !logrus.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	msg := fmt.Sprintf("[progress %3d%%] dataset %s -- algorithm %s -- k=%d threshold %s budget %d (%d/%d)",
		done*100/total, job.Entry.Dataset, job.Algorithm, job.Entry.ArmCount, job.Entry.Threshold,
		job.Budget, job.Iteration+1, p.iterations)
	if !p.inPlace {
		logrus.Info(msg)
		return
	}
	fmt.Fprintf(p.w, "\r%-120s", msg)
	if done == total {
		fmt.Fprintln(p.w)
	}
}

// addRunFlags binds the run flags of cmd to the package flag variables.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "Batch configuration YAML file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "File with SAMBA_SEED, SAMBA_WORKERS and SAMBA_OUTPUT defaults")
	cmd.Flags().StringArrayVar(&datasetFlags, "dataset", nil, "Dataset probability file as name=path (repeatable)")
	cmd.Flags().StringVar(&outputDir, "output", "output", "Output directory")
	cmd.Flags().Int64Var(&batchSeed, "seed", 42, "Master seed from which every run seed is drawn")
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of runs executed concurrently")
	cmd.Flags().IntSliceVar(&budgets, "budget", []int{1000}, "Comma-separated budgets")
	cmd.Flags().IntVar(&iterations, "iterations", 20, "Iterations per algorithm and dataset entry")
	cmd.Flags().StringSliceVar(&algorithms, "algorithms", nil, "Comma-separated algorithms (default: all)")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0.1, "Epsilon-greedy exploration rate")
	cmd.Flags().Float64Var(&tau, "tau", 0.1, "Softmax temperature")
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
