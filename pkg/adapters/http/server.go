package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/layout"
	"github.com/aretw0/carepath/pkg/metrics"
	"github.com/aretw0/carepath/pkg/ports"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PublisherFactory returns the snapshot publisher of a new session.
type PublisherFactory func(sessionID string) ports.SnapshotPublisher

// Server exposes one graph over HTTP. Every session owns its own controller.
type Server struct {
	graph    atomic.Pointer[graph.Graph]
	sessions *sessionStore
	streams  *StreamManager

	doc    *openapi3.T
	router routers.Router

	layoutCfg  layout.Config
	padding    float64
	metrics    *metrics.Metrics
	exporter   ports.Exporter
	publishers PublisherFactory
	debounce   time.Duration
	sessionTTL time.Duration
	version    string
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithLayoutConfig(cfg layout.Config) Option {
	return func(s *Server) { s.layoutCfg = cfg }
}

func WithViewportPadding(p float64) Option {
	return func(s *Server) { s.padding = p }
}

// WithMetrics records traversal metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithExporter enables POST /sessions/{id}/export.
func WithExporter(exp ports.Exporter) Option {
	return func(s *Server) { s.exporter = exp }
}

// WithPublisher forwards every session snapshot to the publisher returned by
// f, coalescing bursts shorter than debounce.
func WithPublisher(f PublisherFactory, debounce time.Duration) Option {
	return func(s *Server) {
		s.publishers = f
		s.debounce = debounce
	}
}

// WithSessionTTL evicts sessions idle for longer than ttl.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) { s.sessionTTL = ttl }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithClock replaces time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer loads the embedded OpenAPI document and prepares a server for g.
func NewServer(ctx context.Context, g *graph.Graph, opts ...Option) (*Server, error) {
	s := &Server{
		layoutCfg: layout.DefaultConfig(),
		padding:   24,
		version:   "dev",
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.graph.Store(g)
	s.sessions = newSessionStore(s.sessionTTL, s.now)
	s.streams = NewStreamManager(s.logger)

	doc, router, err := loadSpec(ctx)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	s.router = router
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Use(validateRequests(s.router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/graph", s.getGraph)
	r.Get("/layout", s.getLayout)
	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{session_id}", func(r chi.Router) {
		r.Get("/", s.getSession)
		r.Delete("/", s.deleteSession)
		r.Post("/advance", s.advance)
		r.Post("/back", s.back)
		r.Post("/jump", s.jump)
		r.Post("/reset", s.reset)
		r.Get("/summary", s.getSummary)
		r.Post("/export", s.export)
		r.Get("/events", s.subscribeEvents)
	})
	return r
}

// Graph returns the graph new sessions start on.
func (s *Server) Graph() *graph.Graph {
	return s.graph.Load()
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.len()
}

// Reload validates def and hot-swaps it into every session. Sessions whose
// path is still valid keep it; the others restart.
func (s *Server) Reload(def domain.GraphDefinition) error {
	g, err := graph.Load(def, graph.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.graph.Store(g)

	kept := 0
	all := s.sessions.all()
	for _, sess := range all {
		ok, err := sess.ctrl.Reload(def)
		if err != nil {
			return fmt.Errorf("session %s: %w", sess.id, err)
		}
		if ok {
			kept++
		}
	}
	s.logger.Info("graph reloaded", "graph", g.ID(), "sessions", len(all), "kept", kept)
	return nil
}

// Close ends every session and disconnects their streams.
func (s *Server) Close() {
	for _, sess := range s.sessions.all() {
		if removed, ok := s.sessions.remove(sess.id); ok {
			s.release(removed)
		}
	}
}

func (s *Server) release(sess *session) {
	sess.cancel()
	s.streams.Close(sess.id)
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.logger.Debug("session closed", "session_id", sess.id)
}

func (s *Server) terminal(nodeID string) bool {
	n, ok := s.Graph().GetNode(nodeID)
	return ok && n.IsTerminal()
}

func (s *Server) newSession() *session {
	for _, expired := range s.sessions.sweep() {
		s.release(expired)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	logger := s.logger.With("session_id", id)

	machineOpts := []runtime.Option{runtime.WithLogger(logger), runtime.WithContext(ctx)}
	if s.metrics != nil {
		machineOpts = append(machineOpts, runtime.WithLifecycleHooks(s.metrics.Hooks(s.terminal)))
	}

	ctrlOpts := []view.Option{
		view.WithLogger(logger),
		view.WithLayoutConfig(s.layoutCfg),
		view.WithViewportPadding(s.padding),
		view.WithMachineOptions(machineOpts...),
		view.WithSubscriber(&diffBroadcaster{sessionID: id, streams: s.streams, logger: logger}),
	}
	if s.publishers != nil {
		var sub view.Subscriber = view.Forward(ctx, s.publishers(id), logger)
		if s.debounce > 0 {
			sub = view.Debounce(ctx, sub, s.debounce)
		}
		ctrlOpts = append(ctrlOpts, view.WithSubscriber(sub))
	}

	sess := &session{
		id:     id,
		ctrl:   view.NewController(runtime.NewMachine(s.Graph(), machineOpts...), ctrlOpts...),
		cancel: cancel,
	}
	s.sessions.add(sess)
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	logger.Debug("session created", "graph", s.Graph().ID())
	return sess
}

// diffBroadcaster turns consecutive snapshots into diffs for SSE listeners.
type diffBroadcaster struct {
	sessionID string
	streams   *StreamManager
	prev      *domain.Snapshot
	logger    *slog.Logger
}

func (b *diffBroadcaster) Notify(snap domain.Snapshot) {
	diff := domain.Diff(b.prev, &snap)
	b.prev = &snap
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		b.logger.Error("failed to encode diff", "error", err)
		return
	}
	b.streams.Broadcast(b.sessionID, data)
}

// -- Handlers --

// SessionView is the state of a session as seen by a client.
type SessionView struct {
	SessionID string           `json:"session_id"`
	Snapshot  domain.Snapshot  `json:"snapshot"`
	Node      domain.Node      `json:"node"`
	Choices   []domain.Edge    `json:"choices"`
	Highlight layout.Highlight `json:"highlight"`
	Viewport  layout.Rect      `json:"viewport"`
}

func viewOf(sess *session) SessionView {
	st := sess.ctrl.View()
	return SessionView{
		SessionID: sess.id,
		Snapshot:  st.Snapshot,
		Node:      st.Node,
		Choices:   st.Choices,
		Highlight: st.Highlight,
		Viewport:  st.Viewport,
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	g := s.Graph()
	writeJSON(w, http.StatusOK, map[string]string{
		"app":           "carepath-http",
		"version":       strings.TrimSpace(s.version),
		"api_version":   apiVersion,
		"graph_id":      g.ID(),
		"graph_version": g.Definition().Version,
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Graph().Definition())
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, layout.Compute(s.Graph(), s.layoutCfg))
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	w.Header().Set("Location", "/sessions/"+sess.id)
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// lookup resolves the session of the request, writing the error response
// itself when it cannot.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id, err := bindSessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	sess, expired, err := s.sessions.get(id.String())
	if expired != nil {
		s.release(expired)
	}
	if err != nil {
		writeError(w, statusFor(err), fmt.Errorf("session %s: %w", id, err))
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if removed, ok := s.sessions.remove(sess.id); ok {
		s.release(removed)
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond writes the session view after an operation. No-ops are silent and
// answer with the unchanged view.
func (s *Server) respond(w http.ResponseWriter, sess *session, err error) {
	if err != nil && !errors.Is(err, domain.ErrNoOp) {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		EdgeID string `json:"edge_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.respond(w, sess, sess.ctrl.Advance(body.EdgeID))
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.respond(w, sess, sess.ctrl.Back())
	}
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body struct {
		NodeID string `json:"node_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.respond(w, sess, sess.ctrl.JumpTo(body.NodeID))
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		sess.ctrl.Reset()
		s.respond(w, sess, nil)
	}
}

func (s *Server) buildSummary(sess *session) (summary.Document, error) {
	return summary.FromSnapshot(sess.ctrl.Graph().Definition(), sess.ctrl.Snapshot())
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format, err := bindFormat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := s.buildSummary(sess)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if format == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(summary.Markdown(doc)))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no exporter configured"))
		return
	}
	doc, err := s.buildSummary(sess)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	svc := summary.NewService(s.exporter, sess.ctrl, summary.WithLogger(s.logger), summary.WithTimeout(30*time.Second))
	// The export outlives the request; its result is logged by the service.
	svc.ExportAsync(context.WithoutCancel(r.Context()), doc)
	writeJSON(w, http.StatusAccepted, doc)
}

// subscribeEvents streams snapshot diffs of one session (SSE). The first
// event carries the full snapshot.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	watch, err := bindWatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	// Subscribe before reading the snapshot so no change falls in between.
	ch, unsubscribe := s.streams.Subscribe(sess.id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	initial, err := json.Marshal(sess.ctrl.Snapshot())
	if err != nil {
		s.logger.Error("SSE: snapshot encode failed", "error", err)
		return
	}
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	flusher.Flush()
	s.logger.Debug("SSE: client subscribed", "session_id", sess.id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sess.id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesWatch reports whether the diff touches one of the watched fields.
func matchesWatch(msg []byte, watch []string) bool {
	var diff domain.SnapshotDiff
	if err := json.Unmarshal(msg, &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "current":
			if diff.CurrentNodeID != nil {
				return true
			}
		case "path":
			if diff.Path != nil {
				return true
			}
		case "terminal":
			if diff.Terminal != nil {
				return true
			}
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnknownEdge),
		errors.Is(err, domain.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, summary.ErrNotTerminal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
