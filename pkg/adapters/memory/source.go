package memory

import (
	"context"

	"github.com/aretw0/carepath/pkg/domain"
)

// Source implements ports.DefinitionSource over a definition held in memory.
type Source struct {
	def domain.GraphDefinition
}

// NewSource creates a source returning copies of def.
func NewSource(def domain.GraphDefinition) *Source {
	return &Source{def: def.Clone()}
}

// Load returns a copy of the definition.
func (s *Source) Load(ctx context.Context) (domain.GraphDefinition, error) {
	if err := ctx.Err(); err != nil {
		return domain.GraphDefinition{}, err
	}
	return s.def.Clone(), nil
}
