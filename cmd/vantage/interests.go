// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/embedding"
	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/personalize"
)

func newInterestsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interests",
		Short: "Inspect and manage user interests",
		Long: `interests reads the user store directly. Stop a running server first;
the store can only be opened by one process.`,
	}
	cmd.AddCommand(
		newInterestsShowCmd(opts),
		newInterestsResetCmd(opts),
		newInterestsScoreCmd(opts),
		newInterestsRecommendCmd(opts),
	)
	return cmd
}

// interestsView is the JSON output of interests show.
type interestsView struct {
	User      models.UserID     `json:"user"`
	Positive  int               `json:"positive_cois"`
	Negative  int               `json:"negative_cois"`
	Enough    bool              `json:"enough_interests"`
	Interests coi.UserInterests `json:"interests"`
	Tags      models.TagWeights `json:"tags,omitempty"`
}

func newInterestsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user>",
		Short: "Print the centers of interest and tag weights of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := models.NewUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				interests, tags, err := a.engine.Interests(cmd.Context(), user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), &interestsView{
					User:      user,
					Positive:  len(interests.Positive),
					Negative:  len(interests.Negative),
					Enough:    a.engine.HasEnoughInterests(&interests),
					Interests: interests,
					Tags:      tags,
				})
			})
		},
	}
}

func newInterestsResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <user>",
		Short: "Delete all interests, tag weights and interactions of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := models.NewUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				if err := a.engine.ResetInterests(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", user)
				return nil
			})
		},
	}
}

func newInterestsScoreCmd(opts *rootOptions) *cobra.Command {
	var (
		vectorsPath string
		pooling     string
	)

	cmd := &cobra.Command{
		Use:   "score <user> [text...]",
		Short: "Score labeled vectors against the interests of a user",
		Long: `score loads a JSON object mapping texts to vectors and prints the
interest score of each text for the user. Without texts every entry of the
file is scored. Entries may also hold per-token vectors, which are pooled
with --pooling.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := models.NewUserID(args[0])
			if err != nil {
				return err
			}
			strategy, err := embedding.ParsePooling(pooling)
			if err != nil {
				return err
			}
			f, err := os.Open(vectorsPath)
			if err != nil {
				return err
			}
			defer f.Close()
			provider, err := embedding.LoadStaticProvider(f, strategy)
			if err != nil {
				return err
			}
			texts := args[1:]
			if len(texts) == 0 {
				texts = provider.Texts()
			}

			return withApp(opts, func(a *app) error {
				interests, _, err := a.engine.Interests(cmd.Context(), user)
				if err != nil {
					return err
				}
				now := a.system.Now()
				out := cmd.OutOrStdout()
				for _, text := range texts {
					e, err := provider.Embed(cmd.Context(), text)
					if err != nil {
						return err
					}
					score, ok := a.system.Score(&interests, e, now)
					if !ok {
						return fmt.Errorf("user %s has no interests", user)
					}
					fmt.Fprintf(out, "%8.4f  %s\n", score, text)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&vectorsPath, "vectors", "", "JSON file mapping texts to vectors")
	cmd.Flags().StringVar(&pooling, "pooling", "average", "token pooling for per-token entries: average or first")
	_ = cmd.MarkFlagRequired("vectors")
	return cmd
}

func newInterestsRecommendCmd(opts *rootOptions) *cobra.Command {
	var (
		count       int
		filterJSON  string
		excludeSeen bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <user>",
		Short: "Retrieve personalized documents for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := models.NewUserID(args[0])
			if err != nil {
				return err
			}
			options := personalize.Options{Count: count, ExcludeSeen: excludeSeen}
			if filterJSON != "" {
				f, err := filter.Parse([]byte(filterJSON))
				if err != nil {
					return err
				}
				options.Filter = f
			}

			return withApp(opts, func(a *app) error {
				docs, err := a.engine.PersonalizedDocuments(cmd.Context(), user, options)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), docs)
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of documents (default: configured default)")
	cmd.Flags().StringVar(&filterJSON, "filter", "", `property filter, e.g. '{"lang": {"$eq": "en"}}'`)
	cmd.Flags().BoolVar(&excludeSeen, "exclude-seen", true, "exclude documents the user reacted to")
	return cmd
}

// withApp loads the configuration, opens the app and runs fn.
func withApp(opts *rootOptions, fn func(*app) error) (err error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
