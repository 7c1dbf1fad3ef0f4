// Package story turns loosely typed input into story graphs.
//
// NormalizeSpec is total: it never fails and always yields a renderable
// AuthoringGraph, because the authoring surface feeds it partial input
// while the author is typing. Decode accepts JSON or YAML in either the
// authoring or the runtime shape.
package story
