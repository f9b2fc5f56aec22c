package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sportsday/internal/config"
)

// app carries state shared by every command.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:               "sportsday",
		Short:             "Sports day registration server",
		Long:              `Accepts sports day registrations over HTTP, stores them, sends confirmation emails and exports the roster as CSV.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runServe,
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().String("store", "", "store URI (sqlite path, postgres:// URL or memory://)")
	_ = a.v.BindPFlag("store_uri", root.PersistentFlags().Lookup("store"))

	root.AddCommand(a.newServeCmd(), a.newExportCmd(), a.newCheckMailCmd())
	return root
}

func (a *app) loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	setupLogger(cfg)
	return nil
}
