/*
Package graph loads and validates an immutable clinical algorithm graph.

Load is the only constructor. It rejects malformed definitions with a
*domain.ValidationError and otherwise returns a *Graph whose lookups
(GetNode, GetOutgoingEdges, GetEdge) are the only way to read the model.
A loaded Graph is never mutated, so it is safe to share between the layout
engine, the traversal state machine and any number of readers.
*/
package graph
