/*
Package dsl provides a Go DSL for programmatically constructing clinical algorithm graphs.

It allows developers to define decision trees using a fluent builder instead of
YAML or JSON files. This is particularly useful for unit tests, fixtures and
generated algorithms.

Example usage:

	b := dsl.New("htn").Guideline("2017 ACC/AHA Hypertension Guideline")

	b.Start("measure", "Measure blood pressure").
		Go("classify", "Recorded", dsl.WithID("e-measured"))

	b.Question("classify", "Classify blood pressure").
		Go("treat", "Stage 2")

	b.Outcome("treat", "Start two first-line agents").
		Why("Stage 2 hypertension needs combination therapy")

	g, err := b.Load() // *graph.Graph, validated
*/
package dsl
