// Command weaverd hosts a Stream Weaver application: it serves the
// streaming SSR response, the remote-executor endpoint for server-context
// logic, and a websocket-driven reactor session, behind one process.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weaverd",
		Short: "Stream Weaver host",
		Long:  "Serve a Stream Weaver application: SSR streaming, remote logic execution, and reactor sessions.",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
