package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/truesight/internal/application/analysis"
	"github.com/bryanwahyu/truesight/internal/bootstrap"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

func newValidateCmd(o *options) *cobra.Command {
	var text, source string
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate raw model output and normalize it into an analysis",
		Long: `Validate reads a model response (a JSON object) and fills every missing
field with its default. Output that is not a JSON object is rejected; there
is no heuristic fallback here.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readFileArg(cmd, args[0])
			if err != nil {
				return err
			}
			input := text
			if input == "" {
				input = raw
			}
			return o.run(cmd, input, func(ctx context.Context, app *bootstrap.App) (*threat.Analysis, error) {
				return app.Service.ValidateModelOutput(ctx, analysis.ValidateCommand{
					TenantID:       cliTenant,
					RawModelOutput: raw,
					Text:           text,
					Source:         source,
				})
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "the analysed text, stored with the result")
	cmd.Flags().StringVar(&source, "source", "text", "content source")
	return cmd
}
