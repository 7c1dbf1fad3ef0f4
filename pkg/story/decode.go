package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/storyloom/pkg/convert"
	"github.com/aretw0/storyloom/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Shape identifies which of the two story formats a document used.
type Shape string

const (
	ShapeAuthoring Shape = "authoring"
	ShapeRuntime   Shape = "runtime"
)

// Format is a serialization syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrEmptyDocument is returned when there is nothing to decode.
var ErrEmptyDocument = errors.New("empty story document")

// Document is a decoded story in both shapes.
type Document struct {
	Shape     Shape
	Authoring *domain.AuthoringGraph
	Runtime   *domain.RuntimeGraph
}

// Decode parses JSON or YAML in either shape. Unlike NormalizeSpec it
// reports syntax errors, since an import of a broken file must be refused.
func Decode(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	var raw any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse story json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse story yaml: %w", err)
		}
	}

	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("story document must be an object, got %T", raw)
	}

	doc := &Document{Shape: ShapeAuthoring}
	if _, isMap := asMap(m["nodes"]); isMap {
		doc.Shape = ShapeRuntime
	}
	doc.Authoring = NormalizeSpec(m)
	doc.Runtime = convert.ToRuntime(doc.Authoring)
	return doc, nil
}

// DecodeFile reads and decodes a story file.
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}
	return Decode(data)
}

// FormatFromPath picks the syntax by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// EncodeAuthoring serializes a story in the exchange shape.
func EncodeAuthoring(g *domain.AuthoringGraph, format Format) ([]byte, error) {
	return encode(NormalizeSpec(g), format)
}

// EncodeRuntime serializes a story in the engine shape.
func EncodeRuntime(rt *domain.RuntimeGraph, format Format) ([]byte, error) {
	return encode(rt, format)
}

func encode(v any, format Format) ([]byte, error) {
	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return append(data, '\n'), nil
}
