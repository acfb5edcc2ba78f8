/*
Package domain contains the core data model of the triage assistant.

It defines the conversation steps, the per-user Session with its ordered
Attributes, the Outbound message shape and the lifecycle events emitted while
turns are processed. The package is free of I/O and external services.

# Key Entities

  - Step: the finite set of positions a conversation can be in.
  - Session: per-user state (step, collected attributes, audit id, creation time).
  - Attributes: insertion-ordered key/value pairs used to build the audit record.
  - Outbound: text plus optional selectable labels, chunked to MaxMessageLength.
*/
package domain
