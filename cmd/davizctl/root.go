package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"daviz/pkg/address"
)

var (
	verbose   bool
	output    string
	programID string
)

var rootCmd = &cobra.Command{
	Use:   "davizctl",
	Short: "Operator tooling for the daviz trust registry",
	Long: `davizctl manages ed25519 signer keys, derives framework, asset and
trust record addresses, and issues bearer tokens accepted by the daviz API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&programID, "program", envOr("DAVIZ_PROGRAM_ID", "B1EzQtkQo1o3dthdo1XHfc3R8qa4zLwxEwp8ATAW2sDS"), "Program id used for address derivation")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func deriver() (address.Deriver, error) {
	program, err := address.Parse(programID)
	if err != nil {
		return address.Deriver{}, fmt.Errorf("invalid --program: %w", err)
	}
	return address.NewDeriver(program), nil
}

// render writes v in the selected output format. text falls back to the
// caller-supplied formatter.
func render(w io.Writer, v any, text func(io.Writer)) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
