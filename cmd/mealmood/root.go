package main

import (
	"errors"
	"io"
	"os"

	"github.com/geocoder89/mealmood/internal/client"
	"github.com/spf13/cobra"
)

const defaultAPI = "http://localhost:8080"

type app struct {
	apiURL      string
	sessionPath string
	out         io.Writer

	store *client.SessionStore
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:           "mealmood",
		Short:         "Mood-based weekly meal plans from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			if a.sessionPath == "" {
				p, err := client.DefaultSessionPath()
				if err != nil {
					return err
				}
				a.sessionPath = p
			}
			a.store = client.NewSessionStore(a.sessionPath)
			return nil
		},
	}

	api := os.Getenv("MEALMOOD_API")
	if api == "" {
		api = defaultAPI
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", api, "API base URL (env MEALMOOD_API)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file path")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.generateCmd(),
		a.plansCmd(),
		a.dashboardCmd(),
	)

	return root
}

// anonymous returns a client with no session, for register and login.
func (a *app) anonymous() *client.Client {
	return client.New(a.apiURL, nil)
}

// authed loads the stored session. Expired sessions are cleared.
func (a *app) authed() (*client.Client, error) {
	sess, err := a.store.Load()
	if err != nil {
		return nil, err
	}

	if !sess.Valid(timeNow()) {
		_ = a.store.Clear()
		return nil, client.ErrSessionExpired
	}

	return client.New(a.apiURL, sess), nil
}

func (a *app) remember(sess *client.Session) error {
	if sess == nil {
		return errors.New("server returned no session")
	}
	return a.store.Save(sess)
}
