package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastsummarizer/internal/prompt"
)

func newModelsCommand(newService Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List chat models of the configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := newService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tMODEL")
			for _, m := range svc.Models() {
				fmt.Fprintf(tw, "%s\t%s\n", m.Provider, m.Model)
			}
			return tw.Flush()
		},
	}
}

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported transcription languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME")
			for _, l := range prompt.Languages() {
				fmt.Fprintf(tw, "%s\t%s %s\n", l.Code, l.Flag, l.Name)
			}
			return tw.Flush()
		},
	}
}
