package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ai-blog-writer/internal/provider"
	"github.com/spf13/cobra"
)

func newCheckKeysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-keys",
		Short: "Show which providers have an API key and their effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			client := provider.NewFromConfig(&cfg.Providers)

			rows := make([][]string, 0, len(provider.All))
			for _, p := range provider.All {
				spec, _ := client.Spec(p)
				key := "missing (demo)"
				if cfg.Providers.APIKey(p.String()) != "" {
					key = "configured"
				}
				rows = append(rows, []string{
					p.String(),
					key,
					spec.Model,
					fallbacks(spec.FallbackModels),
					strconv.Itoa(spec.MaxAttempts),
					spec.BaseDelay.String(),
					spec.Timeout.String(),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "API key", "Model", "Fallbacks", "Attempts", "Base delay", "Timeout"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func fallbacks(models []string) string {
	if len(models) == 0 {
		return "-"
	}
	return strings.Join(models, ", ")
}
