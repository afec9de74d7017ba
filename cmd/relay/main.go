package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"spysignal/internal/app"
	"spysignal/internal/backend"
	"spysignal/internal/logging"
	"spysignal/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath, listen, dbPath string
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Run the spysignal relay server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			if cmd.Flags().Changed("db") {
				cfg.Server.DBPath = dbPath
			}

			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			st, err := backend.OpenStore(cfg.Server.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := backend.NewServer(st, log, m, backend.Options{
				RateLimitRPS:   cfg.Server.RateLimitRPS,
				RateLimitBurst: cfg.Server.RateLimitBurst,
				Gatherer:       reg,
			})
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Listen)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default :8000)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default spysignal.db)")
	return cmd
}
