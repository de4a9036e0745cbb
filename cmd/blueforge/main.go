package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blueforge/internal/config"
	"blueforge/internal/pipeline"
	"blueforge/internal/store"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "blueforge",
		Short: "Reconstructs class assets from reflection dumps",
	}
	dbPath        string
	configPath    string
	destFlag      string
	nameFlag      string
	reportFlag    string
	reportDirFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the local asset registry database (SQLite)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	createCmd.Flags().StringVar(&destFlag, "dest", "", "Destination package path for the new asset")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Asset name (defaults to the dump file name)")
	createCmd.Flags().StringVar(&reportFlag, "report", "", "Write the run report JSON to this path")
	batchCmd.Flags().StringVar(&reportDirFlag, "report-dir", "", "Write one run report JSON per dump into this directory")
	structCmd.Flags().StringVar(&destFlag, "dest", "", "Destination package path for the new asset")
	structCmd.Flags().StringVar(&nameFlag, "name", "", "Asset name (defaults to the dump file name)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(structCmd)
}

// initPipeline loads the config and wires the store and pipeline.
func initPipeline() (*pipeline.Pipeline, *store.SQLiteStore, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open asset registry: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	p := pipeline.New(cfg, st, pipeline.NopCompiler{}, logger)
	return p, st, cfg, nil
}

var parseCmd = &cobra.Command{
	Use:   "parse <dump.json>",
	Short: "Parse a class dump and print the extracted manifest",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, st, _, err := initPipeline()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer st.Close()

		m, diags, err := p.ParseDump(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Parse failed: %v", err)
		}

		fmt.Printf("Parent:     %s\n", m.Parent)
		fmt.Printf("Functions:  %d\n", len(m.Functions))
		for _, f := range m.Functions {
			ret := f.ReturnEncoding
			if ret == "" {
				ret = "(inferred)"
			}
			fmt.Printf("  - %s -> %s\n", f.Name, ret)
		}
		fmt.Printf("Variables:  %d\n", len(m.Variables))
		for _, v := range m.Variables {
			fmt.Printf("  - %s: %s\n", v.Name, v.Kind)
		}
		fmt.Printf("Components: %d\n", len(m.Components))
		for _, c := range m.Components {
			fmt.Printf("  - %s (%s)\n", c.Name, c.ClassName)
		}
		if len(diags) > 0 {
			fmt.Printf("Diagnostics: %d\n", len(diags))
			for _, e := range diags.Sorted() {
				fmt.Printf("  [%s] %s: %s\n", e.Severity, e.Code, e.Message)
			}
		}
	},
}

var createCmd = &cobra.Command{
	Use:   "create <dump.json>",
	Short: "Create a class asset from a reflection dump",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, st, cfg, err := initPipeline()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer st.Close()

		dest := destFlag
		if dest == "" {
			dest = cfg.Batch.DefaultDest
		}
		name := nameFlag
		if name == "" {
			name = assetNameFromDump(args[0])
		}

		start := time.Now()
		a, report, err := p.CreateClassAssetFromDump(context.Background(), args[0], dest, name)
		if reportFlag != "" && report != nil {
			if serr := report.Save(reportFlag); serr != nil {
				log.Printf("Warning: failed to save run report: %v", serr)
			}
		}
		if err != nil {
			log.Fatalf("Create failed: %v", err)
		}

		fmt.Printf("✅ Created %s in %v\n", a.Path, time.Since(start))
		fmt.Printf("   functions=%d components=%d variables=%d\n",
			report.Summary.FunctionsAdded, report.Summary.ComponentsAdded, report.Summary.VariablesAdded)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Create assets for every class dump under a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, st, _, err := initPipeline()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer st.Close()

		start := time.Now()
		runner := pipeline.NewBatchRunner(p)
		runner.ReportDir = reportDirFlag
		stats, err := runner.Run(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Batch failed: %v", err)
		}

		fmt.Printf("✅ Batch complete in %v\n", time.Since(start))
		fmt.Printf("   total=%d created=%d skipped=%d failed=%d\n",
			stats.Total, stats.Created, stats.Skipped, stats.Failed)
		for _, e := range stats.Errors {
			fmt.Printf("   ⚠️  %s\n", e)
		}
	},
}

var structCmd = &cobra.Command{
	Use:   "struct <dump.json>",
	Short: "Create a placeholder struct asset from a reflection dump",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, st, cfg, err := initPipeline()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		defer st.Close()

		dest := destFlag
		if dest == "" {
			dest = cfg.Batch.DefaultDest
		}
		name := nameFlag
		if name == "" {
			name = assetNameFromDump(args[0])
		}

		a, err := p.CreateStructAssetFromDump(context.Background(), args[0], dest, name)
		if err != nil {
			log.Fatalf("Create failed: %v", err)
		}
		fmt.Printf("✅ Created %s\n", a.Path)
	},
}

func assetNameFromDump(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}
