/*
Package domain contains the core domain models of the Storyloom narrative engine.

It defines the two shapes of a story graph, the player's traversal state, the
persisted progress and save-slot records, and the closed set of condition and
action kinds a story may attach to nodes and choices. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - AuthoringGraph: the exchange shape (array of nodes, choices with label/target).
  - RuntimeGraph: the engine shape (nodes keyed by id, choices with text/to).
  - TraversalState: where the player is and what they carry (stacks, inventory, flags, variables).
  - ProgressRecord: the versioned on-disk representation of a TraversalState.
  - Slot: a named, independently persisted save.
*/
package domain
