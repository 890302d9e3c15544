package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

func newProfilesCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List and manage profiles of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProfiles(cmd, r.env)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List profiles; the active one is marked with *",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listProfiles(cmd, r.env)
			},
		},
		newProfileCreateCmd(r),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.env.requireLogin(); err != nil {
					return err
				}
				if err := r.env.Session.DeleteProfile(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Profile %s deleted\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "use <id>",
			Short: "Make a profile active",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env := r.env
				if err := env.requireLogin(); err != nil {
					return err
				}
				profiles := env.Session.Session().Profiles
				idx := slices.IndexFunc(profiles, func(p models.Profile) bool { return p.ID == args[0] })
				if idx < 0 {
					return fmt.Errorf("profile %s not found", args[0])
				}
				env.Session.SetActiveProfile(profiles[idx])
				fmt.Fprintf(cmd.OutOrStdout(), "Active profile: %s\n", profiles[idx].Name)
				return nil
			},
		},
	)
	return cmd
}

func newProfileCreateCmd(r *runner) *cobra.Command {
	var input models.ProfileInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireLogin(); err != nil {
				return err
			}
			profile, err := r.env.Session.CreateProfile(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %s created (%s)\n", profile.Name, profile.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "profile name")
	cmd.Flags().StringVar(&input.AgeRating, "age-rating", "", "age rating: all, 7+, 13+, 16+, 18+")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func listProfiles(cmd *cobra.Command, env *Env) error {
	if err := env.requireLogin(); err != nil {
		return err
	}
	s := env.Session.Session()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tRATING")
	for _, p := range s.Profiles {
		mark := ""
		if s.ActiveProfile != nil && s.ActiveProfile.ID == p.ID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, p.AgeRating)
	}
	return w.Flush()
}
