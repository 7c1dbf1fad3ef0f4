/*
Package analysis provides pure, read-only checks over an authoring story graph.

Problems that make a story unplayable (no valid start, duplicate or missing ids,
non-string choice targets) are errors. Problems that are merely suspicious
(unresolved targets, unreachable nodes, dead ends) are warnings. Callers decide
whether to block on errors; warnings never block.

All functions are reentrant and never mutate their input.
*/
package analysis
