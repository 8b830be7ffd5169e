package main

import (
	"strings"
	"testing"
	"time"

	"github.com/ai-blog-writer/internal/models"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "migrate", "schedules", "check-keys"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if cmd, _, err := root.Find([]string{"migrate", "goto"}); err != nil || cmd.Name() != "goto" {
		t.Error("migrate goto not registered")
	}
}

func TestRootCommandAcceptsServeFlags(t *testing.T) {
	for _, args := range [][]string{{"--skip-migrations"}, {"serve", "--skip-migrations"}} {
		root := newRootCommand()
		cmd, rest, err := root.Find(args)
		if err != nil {
			t.Fatalf("Find(%v): %v", args, err)
		}
		if err := cmd.ParseFlags(rest); err != nil {
			t.Errorf("%v: %v", args, err)
			continue
		}
		if v, err := cmd.Flags().GetBool("skip-migrations"); err != nil || !v {
			t.Errorf("%v: skip-migrations = %v, %v", args, v, err)
		}
	}
}

func TestScheduleRow(t *testing.T) {
	s := &models.Schedule{
		ID:                 "0f8b5c3e-1111-2222-3333-444455556666",
		ArticleID:          "a1b2c3d4-1111-2222-3333-444455556666",
		ScheduledAt:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Timezone:           "Asia/Seoul",
		RecurrenceType:     models.RecurrenceWeekly,
		RecurrenceInterval: 2,
		Platforms:          []string{"naver", "tistory"},
		Status:             models.ScheduleStatusScheduled,
	}

	row := scheduleRow(s)
	want := []string{"0f8b5c3e", "a1b2c3d4", "2024-05-01 09:00 KST", "2x weekly", "naver, tistory", "scheduled"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Provider", "Attempts"}, [][]string{{"claude", "3"}, {"gemini"}}, []columnAlignment{alignLeft, alignRight})

	for _, want := range []string{"PROVIDER", "ATTEMPTS", "claude", "gemini"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}
