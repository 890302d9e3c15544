package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

func newAdminCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin back-office (requires the admin role)",
	}

	var page models.Page
	addPageFlags := func(c *cobra.Command) {
		c.Flags().IntVar(&page.Limit, "limit", 20, "page size")
		c.Flags().IntVar(&page.Offset, "offset", 0, "page offset")
	}

	content := &cobra.Command{
		Use:   "content",
		Short: "Manage catalog titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireRole(models.RoleAdmin); err != nil {
				return err
			}
			list, err := r.env.API.AdminListContent(cmd.Context(), page)
			if err != nil {
				return err
			}
			if err := printContent(cmd.OutOrStdout(), list.Items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(list.Items), list.Total)
			return nil
		},
	}
	addPageFlags(content)
	content.AddCommand(
		newAdminContentCreateCmd(r),
		newAdminContentUpdateCmd(r),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a title",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.env.requireRole(models.RoleAdmin); err != nil {
					return err
				}
				if err := r.env.API.AdminDeleteContent(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			},
		},
	)

	users := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireRole(models.RoleAdmin); err != nil {
				return err
			}
			list, err := r.env.API.AdminUsers(cmd.Context(), page)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLES")
			for _, u := range list.Users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", u.ID, u.Email, u.Name, u.Roles)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(list.Users), list.Total)
			return nil
		},
	}
	addPageFlags(users)

	analytics := &cobra.Command{
		Use:   "analytics",
		Short: "Show service analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireRole(models.RoleAdmin); err != nil {
				return err
			}
			a, err := r.env.API.AdminAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daily active users: %d\n", a.DAU)
			fmt.Fprintf(out, "Monthly streams:    %d\n", a.MonthlyStreams)
			fmt.Fprintf(out, "Churn rate:         %.1f%%\n", a.ChurnRate*100)
			fmt.Fprintf(out, "Subscribers:        %d\n", a.Subscribers)
			return nil
		},
	}

	cmd.AddCommand(content, users, analytics)
	return cmd
}

func newAdminContentCreateCmd(r *runner) *cobra.Command {
	var input models.ContentInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a title to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireRole(models.RoleAdmin); err != nil {
				return err
			}
			created, err := r.env.API.AdminCreateContent(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Title, created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&input.Title, "title", "", "title")
	f.IntVar(&input.Year, "year", 0, "release year")
	f.StringVar(&input.Genre, "genre", "", "genre")
	f.StringVar(&input.Language, "language", "", "language code")
	f.StringVar(&input.StreamURL, "stream-url", "", "stream URL")
	f.StringVar(&input.Thumbnail, "thumbnail", "", "thumbnail URL")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newAdminContentUpdateCmd(r *runner) *cobra.Command {
	var (
		title, genre, language, streamURL, thumbnail string
		year                                         int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a title; only passed flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireRole(models.RoleAdmin); err != nil {
				return err
			}
			var patch models.ContentPatch
			f := cmd.Flags()
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("year") {
				patch.Year = &year
			}
			if f.Changed("genre") {
				patch.Genre = &genre
			}
			if f.Changed("language") {
				patch.Language = &language
			}
			if f.Changed("stream-url") {
				patch.StreamURL = &streamURL
			}
			if f.Changed("thumbnail") {
				patch.Thumbnail = &thumbnail
			}

			updated, err := r.env.API.AdminUpdateContent(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", updated.Title, updated.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "title")
	f.IntVar(&year, "year", 0, "release year")
	f.StringVar(&genre, "genre", "", "genre")
	f.StringVar(&language, "language", "", "language code")
	f.StringVar(&streamURL, "stream-url", "", "stream URL")
	f.StringVar(&thumbnail, "thumbnail", "", "thumbnail URL")
	return cmd
}
