// Package cli implements the audiosum command line: local runs of the
// transcription pipeline without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastsummarizer/internal/bootstrap"
	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/llm"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
)

// Service is the part of the pipeline the commands drive.
type Service interface {
	Process(ctx context.Context, job pipeline.Job) (*pipeline.Result, error)
	Summarize(ctx context.Context, text, lang string) (pipeline.SummaryResult, error)
	Synthesize(ctx context.Context, text, voice string) (*tts.SynthesisResult, error)
	Models() []llm.ModelInfo
}

// Factory builds a Service and the function that releases it.
type Factory func(ctx context.Context) (Service, func(), error)

type rootOptions struct {
	verbose bool
	quiet   bool
}

// NewRootCommand assembles the command tree. newService is called lazily by
// the commands that need the pipeline.
func NewRootCommand(newService Factory) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "audiosum",
		Short: "Transcribe, correct and summarize audio files",
		Long: `audiosum runs the audio pipeline locally: decode and normalize an audio
file, transcribe it with the configured speech-to-text backend, correct the
transcript with a language model and optionally summarize it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts)
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")

	root.AddCommand(
		newTranscribeCommand(newService),
		newSummarizeCommand(newService),
		newSpeakCommand(newService),
		newLanguagesCommand(),
		newModelsCommand(newService),
	)
	return root
}

func setupLogging(opts *rootOptions) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	if opts.quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// DefaultFactory builds the pipeline from the environment. Results stay in a
// process-local store since a CLI run never serves lookups.
func DefaultFactory(ctx context.Context) (Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Store.Backend = "memory"
	cfg.Worker.Enabled = false
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	svc, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc.Pipeline, svc.Close, nil
}
