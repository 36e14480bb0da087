package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steerlab/voxsteer/internal/trainer"
)

// TrainCmd trains the classifier from the stored sample library.
func TrainCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the classifier from recorded samples",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := openApp()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer a.Close()

			ctx := context.Background()
			n, err := a.tr.TrainFromLibrary(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Trained on %d samples.\n", n)

			if noSave {
				return
			}
			if err := trainer.SaveModel(ctx, a.bnd, a.st, a.cfg.Decision.Labels); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Model saved.")
		},
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "train without persisting the model")
	return cmd
}
