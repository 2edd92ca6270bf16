package main

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

const redacted = "********"

func newConfigCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML, secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			for _, s := range []*string{&cfg.SessionSecret, &cfg.SMTP.Password, &cfg.Storage.SecretKey} {
				if *s != "" {
					*s = redacted
				}
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}
