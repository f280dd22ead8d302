package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/truesight/internal/bootstrap"
	"github.com/bryanwahyu/truesight/internal/config"
	"github.com/bryanwahyu/truesight/internal/domain/report"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/middleware"
	"github.com/bryanwahyu/truesight/internal/version"
)

// cliTenant is the tenant every CLI analysis is recorded under.
const cliTenant = "cli"

type options struct {
	cfgFile string
	verbose bool
	format  string
	timeout time.Duration
}

// NewRootCommand builds the truesight command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "truesight",
		Short: "trueSight - threat message triage (genuine / hoax / uncertain)",
		Long: `trueSight scores threatening messages (text, email, audio transcripts,
documents) and classifies them as genuine, hoax or uncertain, with a threat
level, reasons, recommendations and an 8-dimension breakdown.

When a Groq or DeepSeek key is configured the model is asked first; any
provider failure falls back to the deterministic heuristic analysis.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (default: $CONFIG_PATH or config.yaml)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&o.format, "format", "f", "json", "output format: json, text, csv, html")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", time.Minute, "overall timeout")

	root.AddCommand(
		newAnalyzeCmd(o),
		newValidateCmd(o),
		newExportCmd(o),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "truesight %s (export format %s)\n", version.Version, report.Version)
		},
	}
}

// app loads config and wires an in-memory service. Logs go to stderr and
// stay at warn unless --verbose.
func (o *options) app(ctx context.Context, cmd *cobra.Command) (*bootstrap.App, error) {
	path := o.cfgFile
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Format = "console"
	if !o.verbose {
		cfg.Logger.Level = "warn"
	}
	return bootstrap.New(ctx, cfg, bootstrap.Options{
		MemoryStore:     true,
		SkipObjectStore: true,
		LogOutput:       cmd.ErrOrStderr(),
		Metrics:         middleware.NewMetrics(),
	})
}

// run wraps a use-case with the app lifecycle and prints its result.
func (o *options) run(cmd *cobra.Command, input string, fn func(context.Context, *bootstrap.App) (*threat.Analysis, error)) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	app, err := o.app(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	a, err := fn(ctx, app)
	if err != nil {
		return err
	}
	return printAnalysis(cmd.OutOrStdout(), a, input, format)
}

func printAnalysis(w io.Writer, a *threat.Analysis, input string, format report.Format) error {
	if format == report.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	pkg, err := report.NewPackage(a.ID, input, a, nil)
	if err != nil {
		return err
	}
	doc, err := report.Render(pkg, format)
	if err != nil {
		return err
	}
	_, err = w.Write(doc.Body)
	return err
}

// readInput returns args joined, or stdin when the only arg is "-" (or none).
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

// readFileArg reads a file path, "-" meaning stdin.
func readFileArg(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		return readInput(cmd, nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
