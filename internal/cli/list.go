package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"petfeed/internal/manager"
	"petfeed/internal/meal"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:       "list [today|scheduled|history|missed|all]",
	Short:     "Show meals in one of the schedule views",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"today", "scheduled", "history", "missed", "all"},
	RunE:      runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit JSON instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	view := "today"
	if len(args) == 1 {
		view = args[0]
	}

	return withManager(cmd, func(ctx context.Context, mgr *manager.Manager) error {
		now := time.Now()
		views := mgr.Views(now)

		var ms []meal.Meal
		switch view {
		case "today":
			ms = views.Today
		case "scheduled":
			ms = views.Scheduled
		case "history":
			ms = views.History
		case "missed":
			ms = views.Missed
		case "all":
			ms = mgr.Meals()
		default:
			return fmt.Errorf("unknown view %q", view)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ms)
		}
		printMeals(ms, now)
		return nil
	})
}

func printMeals(ms []meal.Meal, now time.Time) {
	if len(ms) == 0 {
		fmt.Println("no meals")
		return
	}
	for _, m := range ms {
		status := " "
		switch {
		case m.Completed:
			status = "✓"
		case m.Date == meal.DateOf(now) && m.Time <= meal.ClockOf(now):
			status = "!"
		}
		line := fmt.Sprintf("%s %s %s  %-20s %s", status, m.Date, m.Time, m.Name, m.ID)
		if m.Notes != "" {
			line += "  (" + m.Notes + ")"
		}
		fmt.Println(line)
	}
}
