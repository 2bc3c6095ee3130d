package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your stats, recent plans and today's tip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			stats, err := c.DashboardStats(ctx)
			if err != nil {
				return err
			}
			recent, err := c.RecentPlans(ctx)
			if err != nil {
				return err
			}
			tip, err := c.DailyTip(ctx)
			if err != nil {
				return err
			}

			last := "-"
			if stats.LastPlanDate != nil {
				last = stats.LastPlanDate.Local().Format(time.DateTime)
			}

			fmt.Fprintf(a.out, "Plans:          %d\n", stats.TotalPlans)
			fmt.Fprintf(a.out, "Recipes:        %d\n", stats.TotalRecipes)
			fmt.Fprintf(a.out, "Most used mood: %s\n", orDash(stats.MostUsedMood))
			fmt.Fprintf(a.out, "Last plan:      %s\n", last)
			fmt.Fprintf(a.out, "Account age:    %d days\n", stats.AccountAge)

			if len(recent) > 0 {
				fmt.Fprintln(a.out, "\nRecent:")
				for _, s := range recent {
					fmt.Fprintf(a.out, "  %s  %-8s %d recipes  %s\n", s.ID, s.Mood, s.RecipesCount, s.Date.Local().Format("2 Jan"))
				}
			}

			fmt.Fprintf(a.out, "\nTip of the day: %s\n", tip)
			return nil
		},
	}
}
