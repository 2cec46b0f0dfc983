package cmd

import "github.com/spf13/cobra"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and websocket API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
