package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"misterlister/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Read, change and check settings",
		Annotations: map[string]string{lenientConfigKey: "true"},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "Print one setting, or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				keys := config.Keys()
				if len(args) == 1 {
					keys = args
				}
				for _, k := range keys {
					v, err := a.cfg.GetString(k)
					if err != nil {
						return err
					}
					if len(args) == 1 {
						a.out.Info("%s", v)
					} else {
						a.out.Info("%s = %s", k, v)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting and save the configuration file",
			Long: `Change a setting and save the configuration file. Lists are comma
separated, e.g. "config set layout.headers last,first,dob,item,date".`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				// start from the file so environment and flag overrides are not saved
				cfg, err := config.ReadOrCreate(a.configPath)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := config.Save(cfg, a.configPath); err != nil {
					return err
				}
				v, _ := cfg.GetString(args[0])
				a.out.Verbose("%s = %s (saved to %s)", args[0], v, a.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration for errors and warnings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				result := config.ValidateConfig(a.cfg)
				for _, w := range result.Warnings {
					a.out.Info("warning: %s: %s", w.Field, w.Message)
				}
				for _, e := range result.Errors {
					a.out.Error("error: %s: %s", e.Field, e.Message)
				}
				if !result.Valid {
					return fmt.Errorf("configuration %s has %d errors", a.configPath, len(result.Errors))
				}
				a.out.Info("Configuration OK (%d warnings)", len(result.Warnings))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file and table database paths",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.out.Info("config: %s", a.configPath)
				a.out.Info("store:  %s", a.resolvedStorePath())
				return nil
			},
		},
	)
	return cmd
}
