package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
)

type transcribeOptions struct {
	language  string
	live      bool
	summarize bool
	asJSON    bool
	output    string
}

func newTranscribeCommand(newService Factory) *cobra.Command {
	opts := &transcribeOptions{}
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file, optionally with a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, newService, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "language code (default from DEFAULT_LANGUAGE)")
	cmd.Flags().BoolVar(&opts.live, "live", false, "treat the file as a live recording and enhance it")
	cmd.Flags().BoolVarP(&opts.summarize, "summary", "s", false, "also summarize the transcript")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file instead of stdout")
	return cmd
}

type transcribeOutput struct {
	ProcessID     string  `json:"process_id"`
	Language      string  `json:"language"`
	Transcript    string  `json:"transcript"`
	RawTranscript string  `json:"raw_transcript"`
	Summary       string  `json:"summary,omitempty"`
	DurationSecs  float64 `json:"duration_seconds"`
	Enhanced      bool    `json:"enhanced"`
}

func runTranscribe(cmd *cobra.Command, newService Factory, opts *transcribeOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, release, err := newService(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.Process(ctx, pipeline.Job{
		Filename: filepath.Base(path),
		Data:     data,
		Options: pipeline.Options{
			Language:  opts.language,
			Enhance:   opts.live,
			Summarize: opts.summarize,
		},
	})
	if err != nil {
		return err
	}

	return withOutput(cmd, opts.output, func(w io.Writer) error {
		if opts.asJSON {
			out := transcribeOutput{
				ProcessID:     res.ProcessID,
				Language:      res.Transcript.LanguageCode,
				Transcript:    res.Transcript.CorrectedText,
				RawTranscript: res.Transcript.RawText,
				DurationSecs:  res.Duration.Seconds(),
				Enhanced:      res.Enhanced,
			}
			if res.Summary != nil {
				out.Summary = res.Summary.Text
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintln(w, res.Transcript.CorrectedText)
		if res.Summary != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Summary:")
			fmt.Fprintln(w, res.Summary.Text)
		}
		return nil
	})
}

// withOutput runs write against stdout or, when path is set, a new file.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

