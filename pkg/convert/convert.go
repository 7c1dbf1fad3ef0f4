// Package convert maps stories between the authoring and runtime shapes.
//
// Both directions are total. They preserve title, start, node title/text/image
// and each choice's label/target pair. Authoring-only fields (author, timestamps,
// choice ids) cannot be recovered from the runtime shape and are synthesized on
// the way back.
package convert

import (
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/storyloom/pkg/domain"
)

// Now is the clock used for synthesized timestamps.
var Now = func() time.Time { return time.Now().UTC() }

// ToRuntime converts an authoring graph to the engine shape.
// Nodes without an id are skipped; for duplicate ids the first occurrence wins.
func ToRuntime(g *domain.AuthoringGraph) *domain.RuntimeGraph {
	rt := &domain.RuntimeGraph{
		Title: domain.DefaultTitle,
		Start: domain.DefaultStart,
		Nodes: make(map[string]domain.RuntimeNode),
	}
	if g == nil {
		return rt
	}
	if g.Meta.Title != "" {
		rt.Title = g.Meta.Title
	}
	if g.Meta.Start != "" {
		rt.Start = g.Meta.Start
	}

	for _, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := rt.Nodes[n.ID]; dup {
			continue
		}
		choices := make([]domain.RuntimeChoice, 0, len(n.Choices))
		for _, c := range n.Choices {
			choices = append(choices, domain.RuntimeChoice{
				Text:       c.Label,
				To:         c.Target,
				Conditions: c.Conditions,
				Actions:    c.Actions,
			})
		}
		rt.Nodes[n.ID] = domain.RuntimeNode{
			Title:   n.Title,
			Text:    n.Text,
			Image:   n.Image,
			Choices: choices,
			Actions: n.Actions,
		}
	}
	return rt
}

// ToAuthoring converts a runtime graph back to the exchange shape.
// The start node is emitted first, the rest in id order.
func ToAuthoring(rt *domain.RuntimeGraph) *domain.AuthoringGraph {
	now := Now().Format(time.RFC3339)
	g := &domain.AuthoringGraph{
		Version: domain.DefaultVersion,
		Meta: domain.Meta{
			Title:     domain.DefaultTitle,
			Start:     domain.DefaultStart,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Nodes: []domain.AuthoringNode{},
	}
	if rt == nil {
		return g
	}
	if rt.Title != "" {
		g.Meta.Title = rt.Title
	}
	if rt.Start != "" {
		g.Meta.Start = rt.Start
	}

	ids := make([]string, 0, len(rt.Nodes))
	for id := range rt.Nodes {
		if id != g.Meta.Start {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if _, ok := rt.Nodes[g.Meta.Start]; ok {
		ids = append([]string{g.Meta.Start}, ids...)
	}

	for _, id := range ids {
		n := rt.Nodes[id]
		choices := make([]domain.AuthoringChoice, 0, len(n.Choices))
		for i, c := range n.Choices {
			choices = append(choices, domain.AuthoringChoice{
				ID:         fmt.Sprintf("%s-c%d", id, i+1),
				Label:      c.Text,
				Target:     c.To,
				Conditions: c.Conditions,
				Actions:    c.Actions,
			})
		}
		g.Nodes = append(g.Nodes, domain.AuthoringNode{
			ID:      id,
			Title:   n.Title,
			Text:    n.Text,
			Image:   n.Image,
			Choices: choices,
			Actions: n.Actions,
		})
	}
	return g
}
