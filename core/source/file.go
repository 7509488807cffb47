package source

import (
	"bytes"
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
)

// File reads documents from a JSON or YAML file holding an array of objects.
// Values are converted to the types of the table definition as they are read.
type File struct {
	path   string
	def    *schema.TableDefinition
	logger *zap.Logger
}

// NewFile creates a file source.
func NewFile(path string, def *schema.TableDefinition, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{path: path, def: def, logger: logger}
}

// Load reads and decodes the file.
func (f *File) Load(ctx context.Context) ([]schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	docs, err := DecodeDocuments(data, f.def)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}

	validator := schema.NewValidator()
	invalid := 0
	for i, doc := range docs {
		result := validator.ValidateDocument(f.def, doc)
		if !result.Valid {
			invalid++
			f.logger.Warn("Document does not fit table definition",
				zap.Int("index", i),
				zap.Any("issues", result.Issues))
		}
	}
	f.logger.Info("Loaded records",
		zap.String("path", f.path),
		zap.Int("count", len(docs)),
		zap.Int("invalid", invalid))
	return docs, nil
}

// DecodeDocuments decodes a JSON or YAML array of objects and converts the
// values of every defined column. A nil definition leaves values as decoded.
func DecodeDocuments(data []byte, def *schema.TableDefinition) ([]schema.Document, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var docs []schema.Document
	if err := dec.Decode(&docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []schema.Document{}
	}

	if def != nil {
		for i, doc := range docs {
			if err := CoerceDocument(doc, def); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
	}
	return docs, nil
}

// CoerceDocument converts, in place, the decoded values of a document to the Go
// types the column types compare as: numbers become int64 or float64 and date
// strings become time.Time. Values of any other shape are kept so that
// filtering treats them as mismatches.
func CoerceDocument(doc schema.Document, def *schema.TableDefinition) error {
	for _, col := range def.Columns {
		field := col.SourceField()
		value, ok := doc[field]
		if !ok || value == nil {
			continue
		}

		switch {
		case col.Type.IsNumeric():
			n, isNumber := value.(json.Number)
			if !isNumber {
				continue
			}
			if col.Type == schema.FieldTypeInteger {
				if i, err := n.Int64(); err == nil {
					doc[field] = i
					continue
				}
			}
			f, err := n.Float64()
			if err != nil {
				return fmt.Errorf("column '%s': %w", col.ID, err)
			}
			doc[field] = f
		case col.Type == schema.FieldTypeDate:
			s, isString := value.(string)
			if !isString {
				continue
			}
			ts, err := query.ParseTime(s)
			if err != nil {
				return fmt.Errorf("column '%s': %w", col.ID, err)
			}
			doc[field] = ts
		}
	}
	return nil
}
