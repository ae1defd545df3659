package file

import (
	"fmt"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// definitionDTO is the on-disk shape of a definition. Several keys have
// aliases so hand-written files can use whichever reads best.
type definitionDTO struct {
	ID          string    `mapstructure:"id"`
	Version     string    `mapstructure:"version"`
	Guideline   string    `mapstructure:"guideline"`
	Start       string    `mapstructure:"start"`
	StartNodeID string    `mapstructure:"start_node_id"`
	Nodes       []nodeDTO `mapstructure:"nodes"`
	Edges       []edgeDTO `mapstructure:"edges"`
	FAQ         []faqDTO  `mapstructure:"faq"`
}

type nodeDTO struct {
	ID         string      `mapstructure:"id"`
	Type       string      `mapstructure:"type"`
	Label      string      `mapstructure:"label"`
	Title      string      `mapstructure:"title"`
	Why        string      `mapstructure:"why"`
	Detail     string      `mapstructure:"detail"`
	KeyPoints  []string    `mapstructure:"key_points"`
	References []string    `mapstructure:"references"`
	Content    *contentDTO `mapstructure:"content"`
	Edges      []edgeDTO   `mapstructure:"edges"`
	Options    []edgeDTO   `mapstructure:"options"`
}

type contentDTO struct {
	Why        string   `mapstructure:"why"`
	Detail     string   `mapstructure:"detail"`
	KeyPoints  []string `mapstructure:"key_points"`
	References []string `mapstructure:"references"`
}

type edgeDTO struct {
	ID       string `mapstructure:"id"`
	Source   string `mapstructure:"source"`
	From     string `mapstructure:"from"`
	Target   string `mapstructure:"target"`
	To       string `mapstructure:"to"`
	ToNodeID string `mapstructure:"to_node_id"`
	Label    string `mapstructure:"label"`
	Text     string `mapstructure:"text"`
	Note     string `mapstructure:"note"`
}

type faqDTO struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

// decode turns a generic document into a definition. Unknown keys are
// rejected so typos surface at load time.
func decode(raw map[string]any) (domain.GraphDefinition, error) {
	var dto definitionDTO
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &dto,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.GraphDefinition{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.GraphDefinition{}, fmt.Errorf("failed to decode definition: %w", err)
	}
	return dto.toDomain(), nil
}

func (d definitionDTO) toDomain() domain.GraphDefinition {
	def := domain.GraphDefinition{
		ID:          d.ID,
		Version:     d.Version,
		Guideline:   d.Guideline,
		StartNodeID: firstNonEmpty(d.StartNodeID, d.Start),
	}
	for _, n := range d.Nodes {
		def.Nodes = append(def.Nodes, n.toDomain())
		for _, e := range append(append([]edgeDTO(nil), n.Edges...), n.Options...) {
			def.Edges = append(def.Edges, e.toDomain(n.ID))
		}
	}
	for _, e := range d.Edges {
		def.Edges = append(def.Edges, e.toDomain(""))
	}
	for _, f := range d.FAQ {
		def.FAQ = append(def.FAQ, domain.FAQEntry{Question: f.Question, Answer: f.Answer})
	}
	if def.StartNodeID == "" {
		for _, n := range def.Nodes {
			if n.Type == domain.NodeTypeStart {
				def.StartNodeID = n.ID
				break
			}
		}
	}
	return def
}

func (n nodeDTO) toDomain() domain.Node {
	c := &domain.Content{Why: n.Why, Detail: n.Detail, KeyPoints: n.KeyPoints, References: n.References}
	if n.Content != nil {
		c.Why = firstNonEmpty(n.Content.Why, c.Why)
		c.Detail = firstNonEmpty(n.Content.Detail, c.Detail)
		c.KeyPoints = append(c.KeyPoints, n.Content.KeyPoints...)
		c.References = append(c.References, n.Content.References...)
	}
	out := domain.Node{
		ID:    n.ID,
		Type:  domain.NodeType(n.Type),
		Label: firstNonEmpty(n.Label, n.Title),
	}
	if !c.IsZero() {
		out.Content = c
	}
	return out
}

func (e edgeDTO) toDomain(source string) domain.Edge {
	src := firstNonEmpty(e.Source, e.From, source)
	tgt := firstNonEmpty(e.Target, e.To, e.ToNodeID)
	id := e.ID
	if id == "" {
		id = fmt.Sprintf("%s->%s", src, tgt)
	}
	return domain.Edge{
		ID:     id,
		Source: src,
		Target: tgt,
		Label:  firstNonEmpty(e.Label, e.Text),
		Note:   e.Note,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
