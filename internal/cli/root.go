// Package cli is the command-line surface of petfeed: a long-running reminder
// daemon (serve) plus one-shot schedule management commands standing in for
// the dashboard, scheduled and history pages.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"petfeed/internal/app"
	"petfeed/internal/manager"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "petfeed",
	Short: "petfeed is a pet feeding scheduler and reminder daemon",
	Long: `petfeed tracks scheduled feeding events for a pet, partitions them into
today / upcoming / history views, and alerts when a feeding comes due.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./petfeed.yaml", "path to config file (yaml or json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(deleteCmd)
}

// withManager runs a one-shot command against a freshly-loaded snapshot, then
// releases the store. The reminder poller never starts here.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *manager.Manager) error) error {
	a, err := app.New(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.Manager().Refresh(ctx); err != nil {
		return err
	}
	return fn(ctx, a.Manager())
}
