package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// SamplesCmd manages the recorded sample library.
func SamplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Inspect or prune the sample library",
	}
	cmd.AddCommand(samplesListCmd(), samplesDeleteCmd())
	return cmd
}

func samplesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded samples",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := openApp()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer a.Close()

			samples, err := a.lib.List()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if len(samples) == 0 {
				fmt.Println("No samples recorded.")
				return
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tDURATION\tRECORDED")
			for _, s := range samples {
				secs := float64(len(s.PCM)) / 2 / float64(s.SampleRate)
				fmt.Fprintf(w, "%d\t%s\t%.2fs\t%s\n", s.ID, s.Label, secs, s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			w.Flush()
		},
	}
}

func samplesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label>",
		Short: "Delete all samples for a label",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := openApp()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer a.Close()

			if err := a.lib.DeleteLabel(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Deleted samples for %q.\n", args[0])
		},
	}
}
