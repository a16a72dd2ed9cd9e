package main

import (
	"github.com/spf13/cobra"

	watermark "github.com/gcslaoli/text-watermark-go"
	"github.com/gcslaoli/text-watermark-go/internal/server"
)

var serveConfig = server.ConfigFromEnv()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the watermark API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(serveConfig, watermark.NewEngine(nil))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig.Port, "port", serveConfig.Port, "port to listen on (env PORT)")
	serveCmd.Flags().Int64Var(&serveConfig.MaxFileSize, "max-file-size", serveConfig.MaxFileSize, "maximum upload size in bytes (env MAX_FILE_SIZE)")
}
