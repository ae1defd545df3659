// Package layout computes deterministic layered geometry for a decision graph.
//
// Geometry is a pure function of the loaded graph and a Config. Traversal
// state never feeds into it: the per-session emphasis (visited nodes, taken
// edges, active node) is produced separately by Annotate, and camera framing
// by Fit. Renderers combine the three.
//
// The algorithm is a compact Sugiyama pipeline:
//
//  1. rank: longest path from the start node over the graph with DFS back
//     edges ignored; unreachable nodes are ranked from their own DFS roots.
//  2. order: barycenter sweeps with a fixed iteration count, ties broken by
//     declaration index.
//  3. coordinates: fixed box sizes, every rank centered on the widest.
//  4. routing: elbow connectors between boxes, labels at the path midpoint
//     with a halo rectangle.
package layout
