package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/tui"
)

func printContent(out io.Writer, items []models.Content) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tGENRE\tYEAR\tRATING")
	for _, c := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\n", c.ID, c.Title, c.Genre, c.Year, c.Rating)
	}
	return w.Flush()
}

func newPlansCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := r.env.API.Plans(cmd.Context())
			if err != nil {
				r.env.Log.Debug("using default plans", sl.Err(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.PlanCards(models.EnsureThreePlans(plans), ""))
			return nil
		},
	}
}

func newHomeCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show home page sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := r.env.API.HomeSections(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range []struct {
				title string
				items []models.Content
			}{
				{"Trending", sections.Trending},
				{"Latest", sections.Latest},
				{"CineStream Originals", sections.Originals},
				{"Recommended", sections.Recommended},
			} {
				if len(s.items) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", s.title)
				if err := printContent(out, s.items); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSearchCmd(r *runner) *cobra.Command {
	var q models.SearchQuery

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				q.Q = strings.Join(args, " ")
			}
			results, err := r.env.API.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing found")
				return nil
			}
			return printContent(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&q.Genre, "genre", "", "filter by genre")
	cmd.Flags().StringVar(&q.Language, "language", "", "filter by language code")
	cmd.Flags().IntVar(&q.Year, "year", 0, "filter by release year")
	return cmd
}

func newShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show title details and the stream link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.env.API.ContentDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n", d.Title, d.Year)
			if d.Description != "" {
				fmt.Fprintln(out, d.Description)
			}
			fmt.Fprintf(out, "Genre: %s  Language: %s  Rating: %.1f\n", d.Genre, d.Language, d.Rating)
			if d.StreamURL != "" {
				fmt.Fprintf(out, "Stream: %s\n", d.StreamURL)
			}
			if d.InWatchlist {
				fmt.Fprintln(out, "In your watchlist")
			}
			if d.MyReview != nil {
				fmt.Fprintf(out, "Your review: %d/5 %s\n", d.MyReview.Rating, d.MyReview.Text)
			}
			return nil
		},
	}
}

func newWatchlistCmd(r *runner) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		if err := r.env.requireLogin(); err != nil {
			return err
		}
		items, err := r.env.API.Watchlist(cmd.Context())
		if err != nil {
			return err
		}
		content := make([]models.Content, 0, len(items))
		for _, it := range items {
			content = append(content, it.Content)
		}
		return printContent(cmd.OutOrStdout(), content)
	}

	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show and edit the watchlist",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the watchlist",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add a title to the watchlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.env.requireLogin(); err != nil {
					return err
				}
				if err := r.env.API.AddToWatchlist(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to watchlist\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a title from the watchlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.env.requireLogin(); err != nil {
					return err
				}
				if err := r.env.API.RemoveFromWatchlist(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from watchlist\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newReviewCmd(r *runner) *cobra.Command {
	var review models.Review

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Rate and review a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.env.requireLogin(); err != nil {
				return err
			}
			if review.Rating < 1 || review.Rating > 5 {
				return fmt.Errorf("--rating must be between 1 and 5")
			}
			if err := r.env.API.SubmitReview(cmd.Context(), args[0], review); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Review saved")
			return nil
		},
	}
	cmd.Flags().IntVar(&review.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&review.Text, "text", "", "review text")
	return cmd
}
