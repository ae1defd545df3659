// Package mcp exposes a traversal to Model Context Protocol clients over
// stdio or SSE.
package mcp
