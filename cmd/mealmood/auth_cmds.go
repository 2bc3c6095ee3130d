package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/mealmood/internal/client"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/spf13/cobra"
)

var timeNow = time.Now

func (a *app) registerCmd() *cobra.Command {
	var (
		in       client.RegisterInput
		diet     string
		servings int
		allergy  []string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				in.Password = pw
			}

			if diet != "" || servings > 0 || len(allergy) > 0 {
				in.Preferences = &user.Preferences{Diet: diet, DefaultServings: servings, Allergies: allergy}
			}

			sess, err := a.anonymous().Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := a.remember(sess); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Welcome, %s. Logged in until %s.\n", sess.Profile.Name, sess.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "display name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Password, "password", "", "password (prompted when empty)")
	f.StringVar(&diet, "diet", "", "mixed, veg, vegan or non-veg")
	f.IntVar(&servings, "servings", 0, "default servings")
	f.StringSliceVar(&allergy, "allergy", nil, "allergy to avoid (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				pw, err := readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			sess, err := a.anonymous().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.remember(sess); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in as %s.\n", sess.Profile.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}

			p, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}

			prefs := p.Preferences
			fmt.Fprintf(a.out, "%s <%s>\n", p.Name, p.Email)
			fmt.Fprintf(a.out, "  diet:      %s\n", orDash(prefs.Diet))
			fmt.Fprintf(a.out, "  servings:  %d\n", prefs.DefaultServings)
			fmt.Fprintf(a.out, "  allergies: %s\n", orDash(strings.Join(prefs.Allergies, ", ")))
			fmt.Fprintf(a.out, "  member since %s\n", p.CreatedAt.Local().Format("2 Jan 2006"))
			return nil
		},
	}
}

// readSecret reads one line from the command's stdin.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
