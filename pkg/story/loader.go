package story

import (
	"context"

	"github.com/aretw0/storyloom/pkg/domain"
)

// FileLoader loads a single JSON or YAML story file in either shape.
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for the story file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load implements ports.StoryLoader. The file is re-read on every call.
func (l *FileLoader) Load(ctx context.Context) (*domain.AuthoringGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := DecodeFile(l.Path)
	if err != nil {
		return nil, err
	}
	return doc.Authoring, nil
}
