package carepath

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/carepath/internal/runtime"
	fileAdapter "github.com/aretw0/carepath/pkg/adapters/file"
	loamAdapter "github.com/aretw0/carepath/pkg/adapters/loam"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/layout"
	"github.com/aretw0/carepath/pkg/ports"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/aretw0/loam"
)

// Version is the library version reported by the CLI and the adapters.
const Version = "0.4.0"

// Engine is the high-level entry point: one validated graph and the
// controller driving a single traversal of it.
type Engine struct {
	ctrl   *view.Controller
	source ports.DefinitionSource
	logger *slog.Logger

	hooks       domain.LifecycleHooks
	viewOpts    []view.Option
	machineOpts []runtime.Option

	Name string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger shared by every layer.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers traversal observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLayoutConfig sets the spacing used for the graph view.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(e *Engine) {
		e.viewOpts = append(e.viewOpts, view.WithLayoutConfig(cfg))
	}
}

// WithViewportPadding sets the margin around the fitted viewport.
func WithViewportPadding(p float64) Option {
	return func(e *Engine) {
		e.viewOpts = append(e.viewOpts, view.WithViewportPadding(p))
	}
}

// WithSubscriber adds a view notified after every traversal change.
func WithSubscriber(s view.Subscriber) Option {
	return func(e *Engine) {
		e.viewOpts = append(e.viewOpts, view.WithSubscriber(s))
	}
}

// WithContext sets the context passed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		e.machineOpts = append(e.machineOpts, runtime.WithContext(ctx))
	}
}

// WithSource records where the definition came from so that Reload and
// Watch can use it. Open sets it automatically.
func WithSource(src ports.DefinitionSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// New validates def and starts a traversal at its start node.
func New(def domain.GraphDefinition, opts ...Option) (*Engine, error) {
	eng := &Engine{Name: def.ID}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	g, err := graph.Load(def, graph.WithLogger(eng.logger))
	if err != nil {
		return nil, err
	}

	machineOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	machineOpts = append(machineOpts, eng.machineOpts...)

	viewOpts := []view.Option{
		view.WithLogger(eng.logger),
		view.WithMachineOptions(machineOpts...),
	}
	viewOpts = append(viewOpts, eng.viewOpts...)

	eng.ctrl = view.NewController(runtime.NewMachine(g, machineOpts...), viewOpts...)
	return eng, nil
}

// Open loads the definition at path and starts a traversal. A directory is
// read as a Loam repository of markdown nodes; a .yaml, .yml or .json file
// as a single definition document.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	src, err := SourceFor(path)
	if err != nil {
		return nil, err
	}
	def, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return New(def, append([]Option{WithSource(src)}, opts...)...)
}

// SourceFor picks the definition source matching path.
func SourceFor(path string) (ports.DefinitionSource, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(absPath)) {
		case ".yaml", ".yml", ".json":
			return fileAdapter.NewSource(absPath), nil
		}
		return nil, fmt.Errorf("unsupported definition file %s", filepath.Base(absPath))
	}

	// The engine never writes definitions, so the repository is opened
	// read-only and strict.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	typedRepo := loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)
	return loamAdapter.New(typedRepo, filepath.Base(absPath)), nil
}

// Controller returns the dual-view controller of the traversal.
func (e *Engine) Controller() *view.Controller {
	return e.ctrl
}

// Source returns the definition source, or nil for engines built with New
// and no WithSource option.
func (e *Engine) Source() ports.DefinitionSource {
	return e.source
}

// Reload reads the source again and swaps the definition in, keeping the
// current path when it is still valid.
func (e *Engine) Reload(ctx context.Context) (bool, error) {
	if e.source == nil {
		return false, fmt.Errorf("engine %s has no definition source", e.Name)
	}
	def, err := e.source.Load(ctx)
	if err != nil {
		return false, err
	}
	return e.ctrl.Reload(def)
}

// Watch returns a channel that signals when the underlying definition
// changes. It fails when the source cannot be watched.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current source does not support watching")
}

// Summary builds the decision summary of the finished traversal. It fails
// with summary.ErrNotTerminal before an outcome is reached.
func (e *Engine) Summary() (summary.Document, error) {
	return summary.FromSnapshot(e.ctrl.Graph().Definition(), e.ctrl.Snapshot())
}
