package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/diewo77/bizdesk/internal/config"
	"github.com/diewo77/bizdesk/internal/db"
	"github.com/diewo77/bizdesk/internal/logging"
)

var version = "dev"

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	cfg     *config.Config
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "bizdesk",
		Short: "Invoices, estimates and work orders for small businesses",
		Long: `bizdesk serves the invoicing API and bundles the tasks around it:
schema migrations, plan seeding, an offline totals calculator and the
voice command matcher.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.log.Sync() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./bizdesk.yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, console)")
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.seedCmd())
	root.AddCommand(totalsCmd())
	root.AddCommand(a.matchCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] != "" {
		return nil
	}
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) dbOptions() db.Options {
	return db.Options{
		Driver:     a.cfg.Database.Driver,
		DSN:        a.cfg.Database.DSN,
		Migrations: a.cfg.Database.Migrations,
		Seed:       a.cfg.Database.Seed,
		Debug:      a.cfg.Log.Level == "debug",
		Logger:     a.log,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bizdesk", version)
		},
	}
}
