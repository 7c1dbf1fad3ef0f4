package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
	contract "github.com/aretw0/storyloom/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	loader := memory.NewFromNodes("Demo",
		domain.AuthoringNode{ID: "start", Text: "Hello World", Choices: []domain.AuthoringChoice{{Label: "Bye", Target: "end"}}},
		domain.AuthoringNode{ID: "end", Text: "Goodbye"},
	)

	contract.StoryLoaderContractTest(t, loader, "start", []string{"start", "end"})
}

func TestInMemoryLoader_ReturnsCopies(t *testing.T) {
	loader := memory.NewFromNodes("Demo", domain.AuthoringNode{ID: "a", Title: "A"})

	g, err := loader.Load(context.Background())
	require.NoError(t, err)
	g.Nodes[0].Title = "changed"

	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", again.Nodes[0].Title)
	assert.Equal(t, "Demo", again.Meta.Title)
}
