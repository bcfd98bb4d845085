package cmd

import (
	"fmt"
	"net/http"
	"time"

	handler "github.com/alexarts74/trip-indo/api"
	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"

	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  `This command starts a long-running HTTP server (the Vercel entrypoint wraps the same router).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCached()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			db := database.GetDatabase(database.DatabaseConfig{
				PostgresDSN: cfg.PostgresDSN,
				SupabaseURL: cfg.SupabaseURL,
				SupabaseKey: cfg.SupabaseKey,
				Debug:       cfg.Debug,
			})
			defer db.Close()

			router := handler.NewRouter(cfg, db)

			// 长驻进程里定期回收空闲连接（serverless下由invocation周期接管）
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for range ticker.C {
					database.CleanupIdleConnections()
				}
			}()

			fmt.Printf("🚀 trip-indo API listening on :%s (%s)\n", cfg.Port, cfg.Environment)
			return http.ListenAndServe(":"+cfg.Port, router)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on (overrides PORT env)")

	return cmd
}
