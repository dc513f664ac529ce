package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"prestamos/config"
	"prestamos/server"
	"prestamos/utils"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "prestamos",
	Short:         "Administration backend for the micro-lending business",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var totalsCmd = &cobra.Command{
	Use:   "totales",
	Short: "Print the dashboard totals",
	RunE:  runTotals,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (default ./prestamos.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(totalsCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := server.OpenBackends(ctx, cfg)
	if err != nil {
		return err
	}
	app := server.New(cfg, backends)
	defer app.Close()

	app.Scheduler().Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.LogInfo("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runTotals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backends, err := server.OpenBackends(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	app := server.New(cfg, backends)
	defer app.Close()

	if _, err := app.Scheduler().RunOnce(cmd.Context()); err != nil {
		return err
	}
	totals := app.Dashboard().State().Totals
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Clientes:  %d\n", totals.TotalClientes)
	fmt.Fprintf(out, "Empleados: %d\n", totals.TotalEmpleados)
	fmt.Fprintf(out, "Artículos: %d\n", totals.TotalArticulos)
	fmt.Fprintf(out, "Préstamos: %d\n", totals.TotalPrestamos)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.LogError("%v", err)
		os.Exit(1)
	}
}
