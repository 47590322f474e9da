package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"docqa/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Serve the QA pipeline over HTTP",
	Long: `Optionally ingest the given files or directories, then expose the
pipeline over HTTP:

  GET  /health
  POST /upload      raw text body (?name=) or multipart file field
  POST /query       {"question": "...", "session_id": "...", "k": 3}
  GET  /documents

Example:
  docqa serve ./docs --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		if err := a.ingestPaths(cmd.Context(), args); err != nil {
			return err
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(a.ingestor, a.asker, a.store, slog.Default())
	fmt.Printf("Listening on %s\n", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
