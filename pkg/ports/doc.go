/*
Package ports defines the driven ports (interfaces) of the triage assistant.

These interfaces decouple the conversation engine from external implementations,
allowing it to work with various session backends, completion services, course
catalogs and audit sinks.

# Key Interfaces

  - SessionStore: Persists and loads the per-user Session.
  - DistributedLocker: Serializes turns for one user across replicas.
  - CatalogClient: Answers course/semester/discipline lookups as formatted text.
  - CompletionClient: Generates free text for unstructured input.
  - AuditExporter: Writes the record of a finished session.
*/
package ports
