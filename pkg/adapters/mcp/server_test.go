package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	mcpadapter "github.com/aretw0/storyloom/pkg/adapters/mcp"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tower() *domain.AuthoringGraph {
	return &domain.AuthoringGraph{
		Version: domain.DefaultVersion,
		Meta:    domain.Meta{Title: "Tower", Start: "base"},
		Nodes: []domain.AuthoringNode{
			{ID: "base", Choices: []domain.AuthoringChoice{
				{ID: "1", Label: "Stairs", Target: "mid"},
				{ID: "2", Label: "Rope", Target: "roof"},
			}},
			{ID: "mid", Choices: []domain.AuthoringChoice{{ID: "3", Label: "Up", Target: "roof"}}},
			{ID: "roof", Choices: []domain.AuthoringChoice{{ID: "4", Label: "Jump", Target: "moat"}}},
			{ID: "cellar"},
		},
	}
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (*domain.AuthoringGraph, error) {
	return nil, errors.New("disk on fire")
}

// call sends one JSON-RPC request and returns the marshaled response.
func call(t *testing.T, s *mcpadapter.Server, id int, method string, params any) string {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func initialized(t *testing.T, s *mcpadapter.Server) *mcpadapter.Server {
	t.Helper()
	out := call(t, s, 0, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]string{"name": "test", "version": "1"},
		"capabilities":    map[string]any{},
	})
	require.Contains(t, out, "storyloom-mcp")
	return s
}

func tool(t *testing.T, s *mcpadapter.Server, name string, args map[string]any) string {
	t.Helper()
	return call(t, s, 1, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestServer_ListTools(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))
	out := call(t, s, 1, "tools/list", map[string]any{})
	for _, name := range []string{"validate_story", "shortest_path", "extract_branch", "render_mermaid"} {
		assert.Contains(t, out, fmt.Sprintf("%q", name))
	}
}

func TestServer_Validate(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))
	out := tool(t, s, "validate_story", map[string]any{})
	assert.Contains(t, out, `unresolved_target`)
	assert.Contains(t, out, `unreachable_node`)
	assert.Contains(t, out, `\"ok\":true`)

	s = initialized(t, mcpadapter.NewServer(failingLoader{}))
	out = tool(t, s, "validate_story", map[string]any{})
	assert.Contains(t, out, `"isError":true`)
	assert.Contains(t, out, "disk on fire")
}

func TestServer_ShortestPath(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))

	out := tool(t, s, "shortest_path", map[string]any{"to": "roof"})
	assert.Contains(t, out, `\"found\":true`)
	assert.Contains(t, out, `\"nodes\":[\"base\",\"roof\"]`)
	assert.Contains(t, out, `\"label\":\"Rope\"`)

	out = tool(t, s, "shortest_path", map[string]any{"from": "mid", "to": "cellar"})
	assert.Contains(t, out, `\"found\":false`)
}

func TestServer_ExtractBranch(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))

	out := tool(t, s, "extract_branch", map[string]any{"nodes": "mid"})
	assert.Contains(t, out, `\"start\": \"mid\"`)
	assert.NotContains(t, out, `\"id\": \"base\"`)
	assert.NotContains(t, out, `\"id\": \"cellar\"`)

	out = tool(t, s, "extract_branch", map[string]any{"nodes": "roof", "format": "yaml"})
	assert.Contains(t, out, "start: roof")

	out = tool(t, s, "extract_branch", map[string]any{"nodes": " , "})
	assert.Contains(t, out, `"isError":true`)
}

func TestServer_Mermaid(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))

	out := tool(t, s, "render_mermaid", map[string]any{})
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "missing: moat")
	assert.NotContains(t, out, "classDef current")

	out = tool(t, s, "render_mermaid", map[string]any{"visited": "base, mid", "current": "mid"})
	assert.Contains(t, out, "class mid current;")
	assert.Contains(t, out, "class base visited;")
}

func TestServer_StoryResource(t *testing.T) {
	s := initialized(t, mcpadapter.NewServer(memory.NewLoader(tower())))
	out := call(t, s, 2, "resources/read", map[string]any{"uri": mcpadapter.StoryURI})
	assert.Contains(t, out, mcpadapter.StoryURI)
	assert.True(t, strings.Contains(out, `\"title\":\"Tower\"`), out)
}
