package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Source implements ports.DefinitionSource and ports.Watchable over a single
// YAML or JSON file.
type Source struct {
	Path string
}

// NewSource creates a source for path. The format follows the extension:
// ".json" is JSON, anything else YAML.
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Load reads and decodes the file.
func (s *Source) Load(ctx context.Context) (domain.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return domain.GraphDefinition{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return domain.GraphDefinition{}, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data, filepath.Ext(s.Path))
	if err != nil {
		return domain.GraphDefinition{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return def, nil
}

// Parse decodes a definition from data. ext selects the syntax.
func Parse(data []byte, ext string) (domain.GraphDefinition, error) {
	raw := map[string]any{}
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.GraphDefinition{}, fmt.Errorf("failed to parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.GraphDefinition{}, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}
	return decode(raw)
}

// Marshal encodes def in the canonical nested form Parse accepts.
func Marshal(def domain.GraphDefinition, ext string) ([]byte, error) {
	doc := canonical(def)
	if strings.EqualFold(ext, ".json") {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

type canonicalDef struct {
	ID          string          `yaml:"id" json:"id"`
	Version     string          `yaml:"version,omitempty" json:"version,omitempty"`
	Guideline   string          `yaml:"guideline,omitempty" json:"guideline,omitempty"`
	StartNodeID string          `yaml:"start_node_id" json:"start_node_id"`
	Nodes       []canonicalNode `yaml:"nodes" json:"nodes"`
	FAQ         []canonicalFAQ  `yaml:"faq,omitempty" json:"faq,omitempty"`
}

type canonicalNode struct {
	ID      string          `yaml:"id" json:"id"`
	Type    string          `yaml:"type" json:"type"`
	Label   string          `yaml:"label" json:"label"`
	Content *domain.Content `yaml:"content,omitempty" json:"content,omitempty"`
	Edges   []canonicalEdge `yaml:"edges,omitempty" json:"edges,omitempty"`
}

type canonicalEdge struct {
	ID    string `yaml:"id" json:"id"`
	To    string `yaml:"to" json:"to"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

type canonicalFAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// canonical nests every edge under its source node. Edges whose source is
// not declared are dropped, so only valid definitions round-trip.
func canonical(def domain.GraphDefinition) canonicalDef {
	out := canonicalDef{
		ID:          def.ID,
		Version:     def.Version,
		Guideline:   def.Guideline,
		StartNodeID: def.StartNodeID,
	}
	index := make(map[string]int, len(def.Nodes))
	for i, n := range def.Nodes {
		index[n.ID] = i
		out.Nodes = append(out.Nodes, canonicalNode{ID: n.ID, Type: string(n.Type), Label: n.Label, Content: n.Content})
	}
	for _, e := range def.Edges {
		if i, ok := index[e.Source]; ok {
			out.Nodes[i].Edges = append(out.Nodes[i].Edges, canonicalEdge{ID: e.ID, To: e.Target, Label: e.Label, Note: e.Note})
		}
	}
	for _, f := range def.FAQ {
		out.FAQ = append(out.FAQ, canonicalFAQ{Question: f.Question, Answer: f.Answer})
	}
	return out
}
