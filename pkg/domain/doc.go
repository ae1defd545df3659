/*
Package domain contains the core domain models of the carepath engine.

It defines the fundamental entities of a clinical decision algorithm, such as
Nodes, Edges and the traversal Snapshot. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Node: A point in the algorithm (start, question, decision, action, outcome, info).
  - Edge: An explicit, labelled choice leading from one node to another.
  - GraphDefinition: The immutable declarative description of one algorithm.
  - PathEntry: One recorded step of a traversal (origin node, edge taken, label).
  - Snapshot: The read-only view of a traversal handed to renderers.
*/
package domain
