/*
Package ports defines the driven ports (interfaces) of the story engine.

These interfaces decouple the traversal engine and the persistence layer from
concrete backends, so the same game can be saved in memory, on disk, in Redis,
SQLite or Badger, and stories can be read from single files or scene folders.

# Key Interfaces

  - KVStore: byte-oriented key-value storage used by the persistence layer.
  - ProgressSaver: receives a snapshot after every successful engine mutation.
  - StoryLoader: produces an authoring graph (e.g. from a Loam folder).
  - DistributedLocker: serializes access to one key across processes.
*/
package ports
