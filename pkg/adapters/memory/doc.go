// Package memory provides in-memory adapters for tests and embedding.
package memory
