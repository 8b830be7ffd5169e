package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/spf13/cobra"
)

func newSchedulesCommand(ctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Print the publication calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.ScheduleStatus(strings.TrimSpace(status))
			if filter != "" && !models.ValidScheduleStatuses[filter] {
				return fmt.Errorf("unknown status %q", status)
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			var rows [][]string
			err = repository.New(db).Schedule.StreamAll(cmd.Context(), func(s *models.Schedule) error {
				if filter != "" && s.Status != filter {
					return nil
				}
				rows = append(rows, scheduleRow(s))
				return nil
			})
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Article", "When", "Repeats", "Platforms", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show schedules with this status")
	return cmd
}

func scheduleRow(s *models.Schedule) []string {
	when := s.ScheduledAt.UTC().Format(time.RFC3339)
	if loc, err := time.LoadLocation(s.Timezone); err == nil {
		when = s.ScheduledAt.In(loc).Format("2006-01-02 15:04 MST")
	}

	repeats := "-"
	if s.RecurrenceType != "" && s.RecurrenceType != models.RecurrenceNone {
		repeats = string(s.RecurrenceType)
		if s.RecurrenceInterval > 1 {
			repeats = strconv.Itoa(s.RecurrenceInterval) + "x " + repeats
		}
	}

	return []string{shortID(s.ID), shortID(s.ArticleID), when, repeats, strings.Join(s.Platforms, ", "), string(s.Status)}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
