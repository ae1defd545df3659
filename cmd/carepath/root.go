package main

import (
	"fmt"
	"os"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/config"
	"github.com/aretw0/carepath/internal/logging"
	"github.com/spf13/cobra"
)

var (
	v      = config.New()
	cfg    config.Config
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "carepath",
	Short: "carepath walks clinical decision algorithms",
	Long: `carepath loads a clinical guideline modelled as a decision graph and lets
you walk it step by step, with the whole algorithm laid out beside you.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, path)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Definition file, or directory holding one or a Loam repository")
	flags.String("config", "", "Config file (default: ./carepath.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
}

func definitionPath(cmd *cobra.Command, args []string) string {
	dir, _ := cmd.Flags().GetString("dir")
	return cli.ResolvePath(dir, args)
}
