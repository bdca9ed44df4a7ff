// Command scoutctl is the roster admin CLI: identity keys, duplicate checks,
// vocabulary lookups, report maintenance and the change feed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/config"
	"github.com/okian/scoutbook/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "scoutctl",
		Short:         "Administer the scouting roster",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(c.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newKeyCmd(),
		newClassifyCmd(),
		newSuggestCmd(),
		newCheckCmd(c),
		newSimilarCmd(c),
		newPlayersCmd(c),
		newSummaryCmd(c),
		newDeleteReportCmd(c),
		newReconcileCmd(c),
		newWatchCmd(),
	)
	return root
}

// withService loads the configuration, opens the service for one command
// and closes it afterwards.
func (c *cli) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	svc, err := service.FromConfig(ctx, cfg, logger.Named("scoutctl"))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Get().Warn(ctx, "close failed", logger.Error(err))
		}
	}()
	return fn(ctx, svc)
}
