/*
Package persistence saves and restores traversal state on top of a ports.KVStore.

# Keys

All keys derive from one storage key (default "storyloom.progress"):

  - <key>.v2          current progress record (formatVersion 2)
  - <key>             legacy progress record, read only
  - <key>.slots       save slot index
  - <key>.slot.<id>   save slot payload

# Migration

Records without a formatVersion, or in the legacy flat shape, are wrapped into
the current shape on load and written back under the versioned key before
being returned. Loading a current record never rewrites it.

# Sanitation

Loaded states are checked against the current story graph: positions and stack
entries naming nodes that no longer exist are dropped, and an invalid position
falls back to the start node. Inventory is player data and is kept.
*/
package persistence
