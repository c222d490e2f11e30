package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petfeed/internal/manager"
	"petfeed/internal/meal"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next meal due today",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(ctx context.Context, mgr *manager.Manager) error {
		now := time.Now()
		next, ok := mgr.Upcoming(now)
		if !ok {
			fmt.Println("no upcoming meal today")
			return nil
		}

		until := "soon"
		if mins, err := meal.MinuteOfDay(next.Time); err == nil {
			nowMins := now.Hour()*60 + now.Minute()
			until = fmt.Sprintf("in %dm", mins-nowMins)
		}
		fmt.Printf("next: %s at %s (%s)\n", next.Name, next.Time, until)
		return nil
	})
}
