package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"archmap/internal/config"
	"archmap/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "archmap",
		Short: "Heuristic architecture analysis over syntax trees",
	}
	configPath  string
	outputDir   string
	verbose     bool
	fromBundles string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "archmap.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Override the configured output directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	analyzeCmd.Flags().StringVar(&fromBundles, "from-bundles", "", "Analyze saved bundles from this directory instead of source files")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cgraCmd)
	rootCmd.AddCommand(watchCmd)
}

// newPipeline resolves the project root from the optional positional
// argument and wires a pipeline with the loaded configuration.
func newPipeline(args []string) (*pipeline.Pipeline, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return pipeline.New(root, cfg, logger)
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Parse every component and save per-component analysis bundles",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline(args)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		if err := p.Scan(context.Background()); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Build the architecture document from source files or saved bundles",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline(args)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		ctx := context.Background()
		if fromBundles != "" {
			err = p.AnalyzeBundles(ctx, fromBundles)
		} else {
			err = p.Analyze(ctx)
		}
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
	},
}

var cgraCmd = &cobra.Command{
	Use:   "cgra [path]",
	Short: "Classify hardware components and channel traffic in CGRA terms",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline(args)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		if err := p.CGRA(context.Background()); err != nil {
			log.Fatalf("CGRA analysis failed: %v", err)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-run the architecture analysis whenever Go files change",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := newPipeline(args)
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		if err := p.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Watch failed: %v", err)
		}
	},
}
