package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steerlab/voxsteer/internal/store"
	"github.com/steerlab/voxsteer/internal/trainer"
)

// ModelCmd manages the persisted model snapshot.
func ModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect or clear the saved model",
	}
	cmd.AddCommand(modelShowCmd(), modelClearCmd())
	return cmd
}

func modelShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved model snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := openApp()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer a.Close()

			rec, err := a.st.Load()
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No saved model.")
				return
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Saved:  %s\n", rec.SavedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Printf("Labels: %v\n", rec.Labels)
			fmt.Printf("Size:   %d bytes\n", len(rec.ModelState))
		},
	}
}

func modelClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved model snapshot",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := openApp()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer a.Close()

			if err := trainer.ClearModel(context.Background(), a.bnd, a.st); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Model cleared.")
		},
	}
}
