package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of exported summaries.
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Exporter implements ports.Exporter by writing one file per summary into
// a directory. File names are "<graph>-<uuid>.<format>".
type Exporter struct {
	Dir    string
	Format Format
}

// NewExporter creates an exporter writing into dir. An empty format means YAML.
func NewExporter(dir string, format Format) *Exporter {
	if format == "" {
		format = FormatYAML
	}
	return &Exporter{Dir: dir, Format: format}
}

// Export encodes doc and writes it.
func (e *Exporter) Export(ctx context.Context, doc domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(doc, e.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure export directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s", doc.GraphID, uuid.NewString(), e.Format)
	if err := os.WriteFile(filepath.Join(e.Dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Encode renders doc in the given format.
func Encode(doc domain.Summary, format Format) ([]byte, error) {
	switch format {
	case FormatYAML, "":
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatMarkdown:
		return []byte(summary.Markdown(doc)), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
