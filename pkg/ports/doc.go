/*
Package ports defines the driven ports (interfaces) of the carepath engine.

These interfaces decouple the engine from where definitions come from and
where its outputs go.

# Key Interfaces

  - DefinitionSource: supplies a GraphDefinition (file, loam directory, memory).
  - Watchable: signals that a source changed and should be reloaded.
  - Exporter: receives the summary of a completed traversal.
  - SnapshotPublisher: forwards traversal snapshots to remote renderers.
*/
package ports
