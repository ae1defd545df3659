// Package loam loads a decision graph from a directory of markdown files
// managed by Loam, one file per node.
package loam
