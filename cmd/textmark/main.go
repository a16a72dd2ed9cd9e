package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Title is the program title
const Title = "textmark"

// Version is the current version of the program
var Version string

// go run ./cmd/textmark --in photo.jpg --text "© ACME" --color white
// go run ./cmd/textmark --in photo.png --text draft --color auto --corner top-left --out -
// go run ./cmd/textmark --in tiny.png --text draft --skip-small --small-threshold 40000
// go run ./cmd/textmark serve --port 9000

var rootCmd = &cobra.Command{
	Use:               Title,
	Version:           Version,
	Short:             Title + ": stamp a text watermark onto an image",
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stamp(cmd.OutOrStdout(), cmd.ErrOrStderr(), &opts)
	},
}

func init() {
	rootCmd.Flags().AddFlagSet(stampFlagSet(&opts))
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
