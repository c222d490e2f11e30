package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petfeed/internal/manager"
	"petfeed/internal/meal"
)

var (
	addName  string
	addDate  string
	addTime  string
	addNotes string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a new meal",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "meal label (required)")
	addCmd.Flags().StringVar(&addDate, "date", "", "calendar date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&addTime, "time", "", "wall-clock time HH:MM (required)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-text notes")
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(ctx context.Context, mgr *manager.Manager) error {
		date := addDate
		if date == "" {
			date = meal.DateOf(time.Now())
		}
		created, err := mgr.Create(ctx, addName, date, addTime, addNotes)
		if err != nil {
			return err
		}
		fmt.Printf("scheduled %s at %s %s (id %s)\n", created.Name, created.Date, created.Time, created.ID)
		return nil
	})
}
