/*
Package ports defines the driven ports (interfaces) for the Dialectic engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various content sources, save-game backends and lock providers.

# Key Interfaces

  - ContentRegistry: Resolves already-validated dialogue graphs by ID (e.g., from Memory, YAML or Loam).
  - MentorDirectory: Supplies mentor records (display name, starting relationship).
  - SnapshotStore: Persists engine snapshots for the host's save system.
  - DistributedLocker: Provides distributed locking for concurrent save-slot access.
  - DialogueEngine: The host-facing API consumed by adapters (HTTP, CLI).
*/
package ports
