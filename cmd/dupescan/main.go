package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dupescan/dupescan/internal/config"
	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/deleter"
	"github.com/dupescan/dupescan/internal/reporter"
	"github.com/dupescan/dupescan/internal/scanner"
	"github.com/dupescan/dupescan/internal/session"
	"github.com/dupescan/dupescan/internal/ui"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
	dryRun     bool
	minSize    string
	workers    int
	outputFmt  string
	outputFile string
	useTUI     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupescan [directory]",
	Short: "Find and remove duplicate files",
	Long: `Dupescan walks a directory tree, finds files with identical content,
and lets you review and delete the duplicates interactively.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(cmd, args)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a directory for duplicate files",
	Long:  `Scans a directory tree and reports duplicate groups without making any changes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		root := targetDir(args)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		scnr := scanner.New(cfg)

		fmt.Printf("Scanning %s...\n", root)

		report, err := scnr.Scan(ctx, root)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if cfg.Verbose {
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
		}

		format := resolveFormat(cmd, cfg)
		if outputFile != "" {
			if err := reporter.SaveToFile(report, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		rptr := reporter.New(os.Stdout, format)
		if err := rptr.Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [directory]",
	Short: "Review duplicates and delete them interactively",
	Long: `Scans a directory tree and opens an interactive review where duplicates
can be inspected and deleted group by group, or all at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows the configuration file location and the resolved settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s\n", cfgPath)

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("\nTo create one with the defaults:")
			fmt.Println("  dupescan config init")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", data)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("config file already exists: %s", cfgPath)
		}

		if err := config.Save(config.Default(), cfgPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Default configuration written to: %s\n", cfgPath)
		return nil
	},
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root := targetDir(args)

	if useTUI {
		return ui.RunInteractive(cfg, root)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scnr := scanner.New(cfg)

	fmt.Printf("Scanning %s...\n", root)

	report, err := scnr.Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if cfg.Verbose {
		for _, w := range report.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}

	rptr := reporter.New(os.Stdout, reporter.FormatSummary)
	if err := rptr.Report(report); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	rescan := func(ctx context.Context) (*dedup.Report, error) {
		return scnr.Scan(ctx, root)
	}

	sess := session.New(report, rescan, deleter.New(cfg.DryRun))

	if cfg.DryRun {
		fmt.Println("\n[DRY RUN MODE] No files will be deleted.")
	}

	prompt := ui.NewPrompt(sess, os.Stdin, os.Stdout)
	return prompt.Run(ctx)
}

func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// resolveFormat picks the report format: the config file supplies the
// value, an explicitly set --output flag overrides it.
func resolveFormat(cmd *cobra.Command, cfg *config.Config) reporter.OutputFormat {
	if cmd.Flags().Changed("output") {
		return parseFormat(outputFmt)
	}
	return parseFormat(cfg.Output)
}

func parseFormat(name string) reporter.OutputFormat {
	switch name {
	case "json":
		return reporter.FormatJSON
	case "yaml":
		return reporter.FormatYAML
	case "table":
		return reporter.FormatTable
	default:
		return reporter.FormatSummary
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&minSize, "min-size", "", "minimum file size to consider (e.g. 1KB)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of hashing workers (0 = auto)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")

	// Scan command flags
	scanCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	// Review command flags
	reviewCmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen interface")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen interface")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		var cfgPath string
		cfgPath, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, err
	}

	// Flags override the file.
	if cmd.Flags().Changed("min-size") || minSize != "" {
		cfg.MinFileSize = minSize
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
