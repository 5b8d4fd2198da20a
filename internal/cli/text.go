package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newSummarizeCommand(newService Factory) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "summarize [text-file]",
		Short: "Summarize a text file, or stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, release, err := newService(ctx)
			if err != nil {
				return err
			}
			defer release()

			res, err := svc.Summarize(ctx, text, language)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code of the summary")
	return cmd
}

func newSpeakCommand(newService Factory) *cobra.Command {
	var voice, output string
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize speech and write the audio to a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, release, err := newService(ctx)
			if err != nil {
				return err
			}
			defer release()

			res, err := svc.Synthesize(ctx, strings.Join(args, " "), voice)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, res.Audio, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes of %s to %s\n", len(res.Audio), res.ContentType, output)
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "voice name (default from TTS_VOICE)")
	cmd.Flags().StringVarP(&output, "output", "o", "speech.mp3", "output audio file")
	return cmd
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
