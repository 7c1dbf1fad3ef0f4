package story_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/aretw0/storyloom/pkg/ports/tests"
	"github.com/aretw0/storyloom/pkg/story"
	"github.com/stretchr/testify/require"
)

var _ ports.StoryLoader = (*story.FileLoader)(nil)

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(authoringJSON), 0o644))
	tests.StoryLoaderContractTest(t, story.NewFileLoader(jsonPath), "a", []string{"a", "b"})

	yamlPath := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(runtimeYAML), 0o644))
	tests.StoryLoaderContractTest(t, story.NewFileLoader(yamlPath), "a", []string{"a", "b"})
}
