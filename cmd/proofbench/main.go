package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/proofbench/proofbench/internal/bench"
	"github.com/proofbench/proofbench/internal/discover"
	"github.com/proofbench/proofbench/internal/log"
	"github.com/proofbench/proofbench/internal/model"
)

var (
	configPath string // actual config file used (if any)
	config     model.Config

	flagConfigFilePath string
	flagVerbose        bool
	flagProofs         string
	flagIterations     int
	flagParallel       int
	flagCSV            string
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is proofbench.yaml in current directory")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	runCmd.Flags().StringVar(&flagProofs, "proofs", "", "root directory holding proof subdirectories")
	runCmd.Flags().IntVar(&flagIterations, "iterations", 0, "runs per proof")
	runCmd.Flags().IntVar(&flagParallel, "parallel", 0, "proofs running concurrently")
	runCmd.Flags().StringVar(&flagCSV, "csv", "", "csv output path")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse the config, setup logging
	rootCmd.PersistentPreRunE = initProofbench

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("proofbench failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "proofbench",
	Short:        "Benchmark wall clock time of CBMC proof runs",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run executes every discovered proof and writes per-run timings as CSV",
	RunE:  doRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provides version of proofbench",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("proofbench: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config:     %s\n", configPath)
		}
		fmt.Printf("proofbench: %s\n", info.Main.Version)
		fmt.Printf("go:         %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit:     %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:       %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:      %s\n", s.Value)
			}
		}
	},
}

func doRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := config.Validate(); err != nil {
		return err
	}

	attrs := slog.Group("proofbench",
		slog.String("batch", uuid.NewString()),
		slog.Int("pid", os.Getpid()),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	proofs, err := discover.Proofs(ctx, config.Proofs, config.Marker)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "discovered proofs", "count", len(proofs), "root", config.Proofs)

	sink, err := bench.OpenSink(config.CSV)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.ErrorContext(ctx, "closing csv output failed", "error", err)
		}
	}()

	scheduler := &bench.Scheduler{
		Invoker:    bench.NewMakeInvoker(config.Make.Binary),
		Parallel:   config.Parallel,
		Iterations: config.Iterations,
		Prepare:    config.Make.Prepare,
		Target:     config.Make.Target,
	}
	return bench.Benchmark(ctx, scheduler, proofs, sink, os.Stdout)
}

func initProofbench(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("PROOFBENCHCONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else if exists("proofbench.yaml") {
		configPath = "proofbench.yaml"
	}

	if configPath == "" {
		config = model.DefaultConfig()
	} else {
		f, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("opening config file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		config, err = model.LoadConfig(f)
		if err != nil {
			return err
		}
	}

	// flags have precedence over the config file
	if flagVerbose {
		config.Verbose = true
	}
	if flagProofs != "" {
		config.Proofs = flagProofs
	}
	if flagIterations != 0 {
		config.Iterations = flagIterations
	}
	if flagParallel != 0 {
		config.Parallel = flagParallel
	}
	if flagCSV != "" {
		config.CSV = flagCSV
	}

	slog.SetDefault(log.New(config.Verbose))

	slog.Debug("proofbench run", "configPath", configPath)
	slog.Debug("proofbench run", "config", config)
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
