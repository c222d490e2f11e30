package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petfeed/internal/manager"
)

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a meal as fed",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(ctx context.Context, mgr *manager.Manager) error {
		if err := mgr.Complete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("completed", args[0])
		return nil
	})
}
