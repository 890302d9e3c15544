// Package cli содержит команды терминального клиента CineStream.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/cinestream/internal/config"
)

// Option настраивает корневую команду.
type Option func(*runner)

// WithEnv подставляет готовое окружение вместо сборки из конфигурации.
func WithEnv(env *Env) Option {
	return func(r *runner) { r.env = env }
}

type runner struct {
	env        *Env
	configPath string
	owned      bool
}

// NewRootCommand создаёт корневую команду cinestream со всеми подкомандами.
// Перед каждой командой сохранённая сессия восстанавливается через GET /users/me.
func NewRootCommand(opts ...Option) *cobra.Command {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}

	root := &cobra.Command{
		Use:   "cinestream",
		Short: "Terminal client for the CineStream streaming service",
		Long: `cinestream is a terminal client for CineStream: browse and search the
catalog, register with a plan, manage profiles and the watchlist, and run
the admin back-office.

The API address is taken from CINESTREAM_API_URL, API_BASE_URL, BACKEND_URL,
PUBLIC_BACKEND_URL, the config file, or http://localhost:3001.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if r.env == nil {
				cfg, err := config.Load(r.configPath)
				if err != nil {
					return err
				}
				env, err := NewEnv(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				r.env = env
				r.owned = true
			}
			r.env.Session.Restore(cmd.Context())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if r.owned {
				return r.env.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&r.configPath, "config", "", "path to YAML config (default $CONFIG_PATH)")

	root.AddCommand(
		newLoginCmd(r),
		newLogoutCmd(r),
		newWhoamiCmd(r),
		newRegisterCmd(r),
		newProfilesCmd(r),
		newPlansCmd(r),
		newHomeCmd(r),
		newSearchCmd(r),
		newShowCmd(r),
		newWatchlistCmd(r),
		newReviewCmd(r),
		newSubscriptionCmd(r),
		newAdminCmd(r),
	)
	return root
}
