package main

import (
	"fmt"
	"os"

	app_config "github.com/civicore/civ-app/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the home directory and write a default config.toml",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	initCmd.Flags().String("home", "", "home directory")
	initCmd.Flags().BoolP("overwrite", "o", false, "overwrite an existing config.toml")
}

func initRun(cmd *cobra.Command, args []string) error {
	home, _ := cmd.Flags().GetString("home")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	cfg := app_config.DefaultConfig(home)
	if err := os.MkdirAll(cfg.StateDBDir(), app_config.DefaultDirPerm); err != nil {
		return err
	}
	if _, err := os.Stat(cfg.ConfigFile()); err == nil && !overwrite {
		return fmt.Errorf("config file %s exists, use -o to overwrite", cfg.ConfigFile())
	}
	if err := app_config.WriteConfigFile(cfg.ConfigFile(), cfg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", cfg.ConfigFile())
	return nil
}
