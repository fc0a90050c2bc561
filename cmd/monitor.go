package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/commutewatch/app"
)

func init() {
	rootCmd.AddCommand(
		monitorCmd(app.KindBus, "Watch MBTA bus 226 departures from Braintree"),
		monitorCmd(app.KindRail, "Watch Red Line departures on the Braintree branch"),
		monitorCmd(app.KindBridge, "Line up a Red Line train with a connecting 226 bus"),
	)
}

func monitorCmd(kind app.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, kind)
		},
	}
}

func runMonitor(cmd *cobra.Command, kind app.Kind) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, kind, app.Options{Status: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer svc.Close()
	return svc.Run(ctx)
}
