package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository to ports.DefinitionSource.
type Source struct {
	Repo *loam.TypedRepository[NodeMetadata]

	// GraphID is used when the directory has no manifest.
	GraphID string
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata], graphID string) *Source {
	return &Source{Repo: repo, GraphID: graphID}
}

type entry struct {
	order int
	path  string
	node  domain.Node
	edges []domain.Edge
}

// Load reads every document and assembles the definition. Nodes are
// declared by (order, path); edges follow their source node in frontmatter
// order. Without a manifest start entry, the first node of type start is
// the entry point.
func (s *Source) Load(ctx context.Context) (domain.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return domain.GraphDefinition{}, err
	}
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return domain.GraphDefinition{}, fmt.Errorf("loam list failed: %w", err)
	}

	def := domain.GraphDefinition{ID: s.GraphID}
	seen := make(map[string]string)
	var entries []entry

	for _, doc := range docs {
		meta := doc.Data
		if meta.Kind == kindGraph {
			applyManifest(&def, meta)
			continue
		}

		id := meta.ID
		if id == "" {
			id = doc.ID
		}
		id = trimExtension(id)

		if existing, ok := seen[id]; ok {
			return domain.GraphDefinition{}, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		entries = append(entries, entry{
			order: meta.Order,
			path:  doc.ID,
			node:  buildNode(id, meta, doc.Content),
			edges: buildEdges(id, meta),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].path < entries[j].path
	})

	for _, e := range entries {
		def.Nodes = append(def.Nodes, e.node)
		def.Edges = append(def.Edges, e.edges...)
		if def.StartNodeID == "" && e.node.Type == domain.NodeTypeStart {
			def.StartNodeID = e.node.ID
		}
	}
	return def, nil
}

func applyManifest(def *domain.GraphDefinition, meta NodeMetadata) {
	if meta.GraphID != "" {
		def.ID = meta.GraphID
	}
	def.Version = meta.Version
	def.Guideline = meta.Guideline
	if meta.Start != "" {
		def.StartNodeID = trimExtension(meta.Start)
	}
	for _, f := range meta.FAQ {
		def.FAQ = append(def.FAQ, domain.FAQEntry{Question: f.Question, Answer: f.Answer})
	}
}

func buildNode(id string, meta NodeMetadata, body string) domain.Node {
	label := meta.Label
	if label == "" {
		label = meta.Title
	}
	n := domain.Node{
		ID:    id,
		Type:  domain.NodeType(meta.Type),
		Label: label,
	}
	c := &domain.Content{
		Why:        meta.Why,
		Detail:     strings.TrimSpace(body),
		KeyPoints:  meta.KeyPoints,
		References: meta.References,
	}
	if !c.IsZero() {
		n.Content = c
	}
	return n
}

func buildEdges(source string, meta NodeMetadata) []domain.Edge {
	all := append(append([]EdgeMetadata(nil), meta.Edges...), meta.Options...)
	if meta.To != "" {
		all = append(all, EdgeMetadata{To: meta.To})
	}

	edges := make([]domain.Edge, 0, len(all))
	for _, em := range all {
		to := em.To
		if to == "" {
			to = em.ToFull
		}
		to = trimExtension(to)
		label := em.Label
		if label == "" {
			label = em.Text
		}
		id := em.ID
		if id == "" {
			id = fmt.Sprintf("%s->%s", source, to)
		}
		edges = append(edges, domain.Edge{ID: id, Source: source, Target: to, Label: label, Note: em.Note})
	}
	return edges
}

// Watch signals every change to a markdown or data file in the repository.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce: one pending signal is enough to trigger a reload.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

// trimExtension drops a document extension so "risk.md" and "risk" name the
// same node. Other dots are kept.
func trimExtension(id string) string {
	switch ext := filepath.Ext(id); ext {
	case ".md", ".json", ".yaml", ".yml":
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}
