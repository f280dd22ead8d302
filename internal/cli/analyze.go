package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/truesight/internal/application/analysis"
	"github.com/bryanwahyu/truesight/internal/bootstrap"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/infra/intake"
)

func newAnalyzeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze text, email, audio transcripts or documents",
	}
	cmd.AddCommand(
		newAnalyzeTextCmd(o),
		newAnalyzeEmailCmd(o),
		newAnalyzeAudioCmd(o),
		newAnalyzeDocumentCmd(o),
	)
	return cmd
}

func newAnalyzeTextCmd(o *options) *cobra.Command {
	var source, fileType string
	cmd := &cobra.Command{
		Use:   "text [text...|-]",
		Short: "Analyze free text",
		Long: `Analyze free text. With no arguments, or "-", the text is read from stdin.

Example:
  truesight analyze text "There is a bomb in the conference room at 14:30"
  echo "just kidding" | truesight analyze text -f text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return o.run(cmd, text, func(ctx context.Context, app *bootstrap.App) (*threat.Analysis, error) {
				return app.Service.AnalyzeText(ctx, analysis.TextCommand{
					TenantID: cliTenant,
					Text:     text,
					Source:   source,
					FileType: fileType,
				})
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "text", "content source: text, email, audio, document")
	cmd.Flags().StringVar(&fileType, "file-type", "", "original file type, if any")
	return cmd
}

func newAnalyzeEmailCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "email <file.eml|->",
		Short: "Analyze a raw email (headers, blank line, body)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readFileArg(cmd, args[0])
			if err != nil {
				return err
			}
			e := intake.ParseEmail(raw)
			return o.run(cmd, strings.TrimSpace(e.Subject+" "+e.Body), func(ctx context.Context, app *bootstrap.App) (*threat.Analysis, error) {
				return app.Service.AnalyzeEmail(ctx, analysis.EmailCommand{TenantID: cliTenant, Email: e})
			})
		},
	}
}

func newAnalyzeAudioCmd(o *options) *cobra.Command {
	var sig threat.AudioSignals
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Analyze an audio transcription with its quality signals",
		Long: `Analyze an audio transcription. Transcription itself happens upstream;
pass the transcript and the signals your speech-to-text engine reported.

Example:
  truesight analyze audio --transcript "bomb in room B" --speakers 2 --confidence 0.6 --duration 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sig.Transcription == "" {
				return errors.New("--transcript is required")
			}
			return o.run(cmd, sig.Transcription, func(ctx context.Context, app *bootstrap.App) (*threat.Analysis, error) {
				return app.Service.AnalyzeAudio(ctx, analysis.AudioCommand{TenantID: cliTenant, Signals: sig})
			})
		},
	}
	cmd.Flags().StringVar(&sig.Transcription, "transcript", "", "transcribed text")
	cmd.Flags().IntVar(&sig.Speakers, "speakers", 1, "number of speakers detected")
	cmd.Flags().Float64Var(&sig.Confidence, "confidence", 1, "transcription confidence (0..1)")
	cmd.Flags().Float64Var(&sig.Duration, "duration", 30, "audio duration in seconds")
	cmd.Flags().StringVar(&sig.Language, "language", "en", "spoken language")
	return cmd
}

func newAnalyzeDocumentCmd(o *options) *cobra.Command {
	var fileType string
	cmd := &cobra.Command{
		Use:   "document <file|->",
		Short: "Analyze text extracted from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readFileArg(cmd, args[0])
			if err != nil {
				return err
			}
			return o.run(cmd, text, func(ctx context.Context, app *bootstrap.App) (*threat.Analysis, error) {
				return app.Service.AnalyzeDocument(ctx, analysis.DocumentCommand{
					TenantID: cliTenant,
					Text:     text,
					FileType: fileType,
				})
			})
		},
	}
	cmd.Flags().StringVar(&fileType, "file-type", "txt", "original document type (pdf, docx, txt)")
	return cmd
}
