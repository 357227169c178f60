package main

import (
	"os"

	"github.com/smallnest/dailyagent/config"
	"github.com/smallnest/dailyagent/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "dailyagent",
		Short:        "Research and write a daily newspaper with language models",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./dailyagent.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error or none")

	root.AddCommand(
		generateCmd(opts),
		serveCmd(opts),
		historyCmd(opts),
		graphCmd(opts),
	)
	return root
}

// load reads the configuration and installs the logger it asks for.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	log.SetDefaultLogger(log.NewConsoleLogger(os.Stderr, level))
	return cfg, nil
}
