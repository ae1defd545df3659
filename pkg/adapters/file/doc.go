// Package file reads definitions from YAML or JSON files and writes
// summaries to a directory.
package file
