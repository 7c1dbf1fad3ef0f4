// Package runtime implements the traversal engine: the state machine that
// tracks where a player is in a story graph, what they carry, and how they
// move through it.
package runtime
