package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petfeed/internal/manager"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a meal from the schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(ctx context.Context, mgr *manager.Manager) error {
		if err := mgr.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("deleted", args[0])
		return nil
	})
}
