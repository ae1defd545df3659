package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/config"
	"github.com/aretw0/carepath/pkg/domain"
)

// DefinitionNames are tried, in order, when no definition path is given.
var DefinitionNames = []string{"carepath.yaml", "algorithm.yaml", "algorithm.yml", "algorithm.json"}

// ResolvePath picks the definition to open: the first argument, then an
// explicit --dir, then a well-known file in dir, then dir itself as a
// Loam repository.
func ResolvePath(dir string, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return dir
	}
	for _, name := range DefinitionNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return dir
}

// OpenEngine opens the definition at path with the settings of cfg.
func OpenEngine(ctx context.Context, cfg config.Config, path string, logger *slog.Logger, extra ...carepath.Option) (*carepath.Engine, error) {
	opts := []carepath.Option{
		carepath.WithLogger(logger),
		carepath.WithContext(ctx),
		carepath.WithLayoutConfig(cfg.Layout),
		carepath.WithViewportPadding(cfg.View.Padding),
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, carepath.WithLifecycleHooks(DebugHooks(logger)))
	}
	opts = append(opts, extra...)

	eng, err := carepath.Open(ctx, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	return eng, nil
}

// DebugHooks logs every traversal event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(_ context.Context, e *domain.TransitionEvent) {
		logger.Debug("transition", "type", e.Type, "from", e.FromNode, "to", e.ToNode, "edge", e.EdgeID, "depth", e.Depth)
	}
	return domain.LifecycleHooks{
		OnAdvance: log,
		OnBack:    log,
		OnJump:    log,
		OnReset:   log,
		OnRejected: func(_ context.Context, e *domain.TransitionEvent) {
			logger.Debug("transition rejected", "from", e.FromNode, "edge", e.EdgeID, "err", e.Err)
		},
	}
}
