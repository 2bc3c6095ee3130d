package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/export"
	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	var mood string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a weekly plan for a mood",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Generating a %s plan...\n", mood)
			p, err := c.GeneratePlan(cmd.Context(), mood, nil)
			if err != nil {
				return err
			}

			a.printPlan(p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mood, "mood", "m", "", "one of "+strings.Join(plan.Moods, ", "))
	_ = cmd.MarkFlagRequired("mood")

	return cmd
}

func (a *app) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List, show, delete or export your plans",
	}

	cmd.AddCommand(a.plansListCmd(), a.plansShowCmd(), a.plansDeleteCmd(), a.plansExportCmd())
	return cmd
}

func (a *app) plansListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your plans, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			plans, err := c.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(a.out, "No plans yet. Try `mealmood generate --mood Happy`.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMOOD\tRECIPES\tCREATED")
			for _, p := range plans {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Mood, len(p.Recipes), p.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func (a *app) plansShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			p, err := c.GetPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			a.printPlan(p)
			return nil
		},
	}
}

func (a *app) plansDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			if err := c.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Deleted plan %s.\n", args[0])
			return nil
		},
	}
}

func (a *app) plansExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export one plan as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			p, err := c.GetPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("mealmood-%s-%s.pdf", strings.ToLower(p.Mood), p.WeekStart.Format("2006-01-02"))
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}

			if err := export.WritePlanPDF(f, p); err != nil {
				_ = f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Wrote %s.\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default mealmood-<mood>-<date>.pdf)")
	return cmd
}

func (a *app) printPlan(p plan.WeeklyPlan) {
	fmt.Fprintf(a.out, "%s plan %s (week of %s)\n\n", p.Mood, p.ID, p.WeekStart.Local().Format("2 Jan 2006"))

	fmt.Fprintln(a.out, "Groceries:")
	for _, g := range p.Groceries {
		if g.Quantity == "" {
			fmt.Fprintf(a.out, "  - %s\n", g.Item)
			continue
		}
		fmt.Fprintf(a.out, "  - %s (%s)\n", g.Item, g.Quantity)
	}

	fmt.Fprintln(a.out, "\nRecipes:")
	for i, r := range p.Recipes {
		fmt.Fprintf(a.out, "  %d. %s [%s]\n", i+1, r.Title, r.MealType)
		for _, ing := range r.Ingredients {
			fmt.Fprintf(a.out, "       %s %s\n", ing.Quantity, ing.Name)
		}
		fmt.Fprintf(a.out, "     %s\n", r.Instructions)
	}
}
