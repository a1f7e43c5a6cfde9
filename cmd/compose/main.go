package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by ldflags during build)
	version = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "compose",
		Short:         "Create shorlogs from the command line",
		Long:          `compose uploads images, writes the text and hashtags of a shorlog, publishes it and optionally links it to one of your blogs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCommand(), draftsCommand(), tokenCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
