package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/scoutbook/internal/adapters/notify"
	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/config"
	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
)

// playerFlags collects the identity-bearing fields of a player.
type playerFlags struct {
	name        string
	nationality string
	birthYear   int
	externalRef string
}

func (f *playerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "player name")
	cmd.Flags().StringVar(&f.nationality, "nationality", "", "nationality")
	cmd.Flags().IntVar(&f.birthYear, "birth-year", 0, "birth year")
	cmd.Flags().StringVar(&f.externalRef, "external-ref", "", "profile link")
	_ = cmd.MarkFlagRequired("name")
}

func (f *playerFlags) player() model.Player {
	return model.Player{
		Name:        f.name,
		Nationality: f.nationality,
		BirthYear:   f.birthYear,
		ExternalRef: f.externalRef,
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newKeyCmd() *cobra.Command {
	f := &playerFlags{}
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the identity key of a player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := identity.Key(f.player())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			if id, ok := identity.ExternalID(f.externalRef); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "external id: %s\n", id)
			}
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

// vocabulary loads the taxonomy named by the configuration, or the embedded one.
func vocabulary(cmd *cobra.Command) (*taxonomy.Taxonomy, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if cfg.TaxonomyPath == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(cfg.TaxonomyPath)
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify TERM...",
		Short: "Show the category of strength or weakness terms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := vocabulary(cmd)
			if err != nil {
				return err
			}
			for _, term := range args {
				cat, ok := tax.Classify(term)
				if !ok {
					cat = model.Other
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cat, term)
			}
			return nil
		},
	}
}

func newSuggestCmd() *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Suggest vocabulary terms matching TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := taxonomy.Kind(strings.ToLower(kind))
			if k != taxonomy.Any && k != taxonomy.Strengths && k != taxonomy.Weaknesses {
				return fmt.Errorf("unknown kind %q: want strengths or weaknesses", kind)
			}
			tax, err := vocabulary(cmd)
			if err != nil {
				return err
			}
			for _, s := range tax.Suggest(args[0], k, limit) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.Term, s.Category, s.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "strengths or weaknesses (default both)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum suggestions")
	return cmd
}

func newCheckCmd(c *cli) *cobra.Command {
	f := &playerFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the duplicate gate for a player without creating it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				err := svc.CheckDuplicates(ctx, f.player())
				var dup *service.DuplicatePlayerError
				if errors.As(err, &dup) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\nexisting id: %s (matched by %s)\n%s\n",
						dup.Message, dup.Existing.ID, dup.Reason, dup.SuggestedAction())
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "no duplicate")
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newSimilarCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "similar NAME",
		Short: "List players whose names are close to NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				matches, err := svc.SimilarPlayers(ctx, args[0])
				if err != nil {
					return err
				}
				for _, m := range matches {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", m.Player.ID, m.Player.Name, m.Distance)
				}
				return nil
			})
		},
	}
}

func newPlayersCmd(c *cli) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List the roster, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				players, err := svc.ListPlayers(ctx, model.LifecycleState(strings.ToLower(state)))
				if err != nil {
					return err
				}
				for _, p := range players {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.ID, p.LifecycleState, p.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "bookmark or scouted")
	return cmd
}

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary PLAYER_ID",
		Short: "Print the consolidated evaluation of a player as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				sum, err := svc.Summary(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sum)
			})
		},
	}
}

func newDeleteReportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-report REPORT_ID",
		Short: "Delete a report; the player's state is left unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				if err := svc.DeleteReport(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newReconcileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Re-evaluate every bookmark and promote the fully covered ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				n, err := svc.ReconcileBookmarks(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "promoted %d\n", n)
				return nil
			})
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream roster change events from redis as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if cfg.RedisAddr == "" {
				return errors.New("redis_addr is not configured")
			}
			feed, err := notify.DialRedis(ctx, cfg.RedisAddr, cfg.RedisChannel)
			if err != nil {
				return err
			}
			defer feed.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return feed.Subscribe(ctx, func(e notify.Event) {
				_ = enc.Encode(e)
			})
		},
	}
}
