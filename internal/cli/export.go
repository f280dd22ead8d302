package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/truesight/internal/application/analysis"
	"github.com/bryanwahyu/truesight/internal/domain/report"
)

func newExportCmd(o *options) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <json|text|csv|html> [text...|-]",
		Short: "Analyze text and write the export report",
		Long: `Export analyzes the text and renders the analysis package (metadata,
input and results) in the chosen format. With --out-dir the report is
written under its standard filename, otherwise to stdout.

Example:
  truesight export csv "bomb in the lobby at 9:00" --out-dir ./reports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(args[0])
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[1:])
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

			a, err := app.Service.AnalyzeText(ctx, analysis.TextCommand{TenantID: cliTenant, Text: text})
			if err != nil {
				return err
			}
			doc, err := app.Service.Export(ctx, cliTenant, a.ID, format)
			if err != nil {
				return err
			}

			if outDir == "" {
				_, err = cmd.OutOrStdout().Write(doc.Body)
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, doc.Filename)
			if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory to write the report into")
	return cmd
}
