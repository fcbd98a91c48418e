/*
Package domain contains the core domain models of the Dialectic dialogue engine.

It defines the authored conversation graph (Graphs, Stages and Options), the closed set of
option effects, mentor records and the ephemeral Session that tracks a player's position in a
graph. This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Graph: a named collection of Stages reachable from a start stage.
  - Stage: one beat of conversation, spoken by a mentor, with an ordered option list.
  - Option: a player choice carrying optional effects and a transition target.
  - Effect: a single typed mutation (insight, momentum, relationship, knowledge).
  - Session: the runtime snapshot of one active conversation (stage pointer and history).
  - Snapshot: the serialisable engine state handed to the host's save system.
*/
package domain
