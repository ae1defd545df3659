package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks def for every structural defect and reports them together.
// It returns nil or a *domain.ValidationError.
func Validate(def domain.GraphDefinition) error {
	var problems []domain.Problem

	if err := validate.Struct(def); err != nil {
		problems = append(problems, fieldProblems(err)...)
	}

	nodeTypes := make(map[string]domain.NodeType, len(def.Nodes))
	starts := 0
	for i, n := range def.Nodes {
		if n.ID == "" {
			continue // reported by the struct pass
		}
		if _, dup := nodeTypes[n.ID]; dup {
			problems = append(problems, domain.Problem{
				Field:  fmt.Sprintf("nodes[%d].id", i),
				Reason: fmt.Sprintf("duplicate node id %q", n.ID),
			})
			continue
		}
		nodeTypes[n.ID] = n.Type
		if n.Type == domain.NodeTypeStart {
			starts++
		}
	}

	switch {
	case def.StartNodeID == "":
		// reported by the struct pass
	case !contains(nodeTypes, def.StartNodeID):
		problems = append(problems, domain.Problem{
			Field:  "start_node_id",
			Reason: fmt.Sprintf("start node %q does not exist", def.StartNodeID),
		})
	case nodeTypes[def.StartNodeID] != domain.NodeTypeStart:
		problems = append(problems, domain.Problem{
			Field:  "start_node_id",
			Reason: fmt.Sprintf("start node %q has type %q, want %q", def.StartNodeID, nodeTypes[def.StartNodeID], domain.NodeTypeStart),
		})
	}
	if starts > 1 {
		problems = append(problems, domain.Problem{
			Field:  "nodes",
			Reason: fmt.Sprintf("exactly one start node is allowed, found %d", starts),
		})
	}

	edgeIDs := make(map[string]bool, len(def.Edges))
	for i, e := range def.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if e.ID != "" {
			if edgeIDs[e.ID] {
				problems = append(problems, domain.Problem{Field: field + ".id", Reason: fmt.Sprintf("duplicate edge id %q", e.ID)})
			}
			edgeIDs[e.ID] = true
		}
		if e.Source != "" && !contains(nodeTypes, e.Source) {
			problems = append(problems, domain.Problem{Field: field + ".source", Reason: fmt.Sprintf("references unknown node %q", e.Source)})
		}
		if e.Target != "" && !contains(nodeTypes, e.Target) {
			problems = append(problems, domain.Problem{Field: field + ".target", Reason: fmt.Sprintf("references unknown node %q", e.Target)})
		}
		if nodeTypes[e.Source] == domain.NodeTypeOutcome {
			problems = append(problems, domain.Problem{Field: field + ".source", Reason: fmt.Sprintf("outcome node %q cannot have outgoing edges", e.Source)})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &domain.ValidationError{GraphID: def.ID, Problems: problems}
}

func contains(m map[string]domain.NodeType, id string) bool {
	_, ok := m[id]
	return ok
}

// fieldProblems formats validator errors the way the HTTP layer reports them.
func fieldProblems(err error) []domain.Problem {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.Problem{{Reason: err.Error()}}
	}

	problems := make([]domain.Problem, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, domain.Problem{
			Field:  fieldPath(fe.Namespace()),
			Reason: fieldReason(fe),
		})
	}
	return problems
}

// fieldPath turns "GraphDefinition.Nodes[2].Type" into "nodes[2].type".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && isLowerOrDigit(s[i-1]) {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isLowerOrDigit(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %q)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
