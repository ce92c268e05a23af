// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/vantage/internal/config"
	"github.com/tomtom215/vantage/internal/logging"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vantage",
		Short: "Personalized document retrieval from centers of interest",
		Long: `Vantage learns per-user centers of interest from reactions to documents
and uses them to retrieve and re-rank documents from a vector store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: $CONFIG_PATH, ./config.yaml or /etc/vantage/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"override the configured log level")

	cmd.AddCommand(
		newServeCmd(opts),
		newInterestsCmd(opts),
		newDocumentsCmd(opts),
		newReactCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads the configuration and initializes logging from it.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logCfg := cfg.Logging.ToLogging()
	logCfg.Version = version
	logging.Init(logCfg)
	return cfg, nil
}
