package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cinestream/internal/api"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
)

func newLoginCmd(r *runner) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := r.env
			ctx := cmd.Context()

			if creds.Email == "" || creds.Password == "" {
				if env.Prompter == nil {
					return errors.New("--email and --password are required when prompts are disabled")
				}
				if err := env.Prompter.Credentials(&creds); err != nil {
					return err
				}
			}

			resp, err := env.API.Login(ctx, models.Credentials{
				Email:    strings.TrimSpace(creds.Email),
				Password: creds.Password,
			})
			if errors.Is(err, api.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			env.Session.Login(resp.AccessToken, resp.User)
			if me, err := env.API.GetMe(ctx); err == nil {
				env.Session.Login(resp.AccessToken, me)
			}
			if err := env.Session.RefreshProfiles(ctx); err != nil {
				env.Log.Warn("cannot load profiles after login", sl.Err(err))
			}
			if s := env.Session.Session(); s.ActiveProfile == nil && len(s.Profiles) > 0 {
				env.Session.SetActiveProfile(s.Profiles[0])
			}

			s := env.Session.Session()
			email := creds.Email
			if s.User != nil {
				email = s.User.Email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.env.Session.SignOut(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := r.env.Session.Session()
			if !s.LoggedIn() || s.User == nil {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintf(out, "Email:   %s\n", s.User.Email)
			if s.User.Name != "" {
				fmt.Fprintf(out, "Name:    %s\n", s.User.Name)
			}
			fmt.Fprintf(out, "Roles:   %s\n", strings.Join(s.User.Roles, ", "))
			if s.ActiveProfile != nil {
				fmt.Fprintf(out, "Profile: %s\n", s.ActiveProfile.Name)
			}
			return nil
		},
	}
}
