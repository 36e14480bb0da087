package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the voxsteer version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("voxsteer", Version)
		},
	}
}
