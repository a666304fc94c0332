package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"ziprates/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		mux, err := api.NewMux(cfg)
		if err != nil {
			return err
		}

		addr := ":" + cfg.Port
		log.Printf("ziprates listening on %s", addr)
		return http.ListenAndServe(addr, mux)
	},
}
