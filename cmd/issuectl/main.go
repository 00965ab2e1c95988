// Command issuectl scans and analyzes GitHub issues from the terminal using
// the same configuration and cache as the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/app"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/config"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/logging"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

var (
	verbose     bool
	showIssues  bool
	logger      *zap.Logger
	application *app.App
	// svc is set by PersistentPreRunE, or beforehand by tests.
	svc service.IssueService
)

var rootCmd = &cobra.Command{
	Use:           "issuectl",
	Short:         "Scan GitHub repositories and analyze their open issues",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if svc != nil {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		} else if cfg.LogLevel == "info" {
			cfg.LogLevel = "warn"
		}

		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}

		application, err = app.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		svc = application.Service
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(context.Background()); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// scanCmd fetches every open issue and replaces the cached set
var scanCmd = &cobra.Command{
	Use:   "scan <owner/name>",
	Short: "Fetch all open issues of a repository into the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.Scan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

// analyzeCmd runs the LLM over the cached issues
var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner/name> <prompt...>",
	Short: "Analyze cached issues with a natural-language prompt",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.Analyze(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Analysis)
		return err
	},
}

// showCmd prints the scan record and optionally the cached issues
var showCmd = &cobra.Command{
	Use:   "show <owner/name>",
	Short: "Show the last scan of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := svc.GetScan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !showIssues {
			return printJSON(cmd, rec)
		}

		issues, err := svc.ListIssues(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, is := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "#%d\t%s\t%s\n", is.Number, is.Title, is.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	showCmd.Flags().BoolVar(&showIssues, "issues", false, "List the cached issues instead of the scan record")

	rootCmd.AddCommand(scanCmd, analyzeCmd, showCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
