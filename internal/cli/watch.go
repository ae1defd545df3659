package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

var errNotWatchable = errors.New("definition source does not support watching")

// WatchReload reloads eng every time its source changes until ctx is done.
// A definition that fails to load or validate is logged and skipped; the
// running traversal keeps the previous graph.
func WatchReload(ctx context.Context, eng *carepath.Engine, logger *slog.Logger) error {
	return watch(ctx, eng.Source(), logger, func(def domain.GraphDefinition) error {
		kept, err := eng.Controller().Reload(def)
		if err == nil {
			logger.Info("definition reloaded", "graph", def.ID, "path_kept", kept)
		}
		return err
	})
}

// WatchSource calls apply with every new definition read from src until
// ctx is done.
func WatchSource(ctx context.Context, src ports.DefinitionSource, logger *slog.Logger, apply func(domain.GraphDefinition) error) error {
	return watch(ctx, src, logger, apply)
}

func watch(ctx context.Context, src ports.DefinitionSource, logger *slog.Logger, apply func(domain.GraphDefinition) error) error {
	w, ok := src.(ports.Watchable)
	if !ok {
		return errNotWatchable
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for range changes {
			def, err := src.Load(ctx)
			if err != nil {
				logger.Error("reload failed", "err", err)
				continue
			}
			if err := apply(def); err != nil {
				logger.Error("reload rejected", "err", err)
			}
		}
	}()
	return nil
}
