package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/carepath/internal/cli"
	redisAdapter "github.com/aretw0/carepath/pkg/adapters/redis"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/spf13/cobra"
)

var followCmd = &cobra.Command{
	Use:   "follow [session-id]",
	Short: "Print snapshots published to Redis as JSON lines",
	Long: `Subscribes to the snapshot channel used by "walk --publish", or to the
channel of one HTTP session when a session id is given, and prints every
snapshot as a JSON line. The latest stored snapshot is printed first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("follow needs redis.addr to be configured")
		}
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		ctx := sigCtx.Context

		channel := cfg.Redis.Channel
		if len(args) > 0 {
			channel += ":" + args[0]
		}
		pub := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisAdapter.WithChannel(channel))
		defer pub.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		latest, err := pub.Latest(ctx)
		switch {
		case err == nil:
			if err := enc.Encode(latest); err != nil {
				return err
			}
		case !errors.Is(err, domain.ErrSessionNotFound):
			return err
		}

		snaps, err := pub.Subscribe(ctx)
		if err != nil {
			return err
		}
		logger.Info("following snapshots", "channel", channel)
		for s := range snaps {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(followCmd)
}
