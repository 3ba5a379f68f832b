package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"raktsetu/app"
	"raktsetu/config"
	"raktsetu/infra/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one expiry pass over active requests",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("sweep-command")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()
	n, err := svc.Manager.ExpireDue(context.Background())
	if err != nil {
		return err
	}
	logg.Infof("expired %d requests", n)
	return nil
}
