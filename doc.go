/*
Package carepath is an interactive engine for clinical decision algorithms.

A guideline is modelled as a directed graph of typed nodes (start, question,
decision, action, info, outcome) joined by labelled edges. The engine walks
one path through that graph, lays the whole graph out once with a
deterministic hierarchical layout, and keeps a full-graph view and a
step-by-step wizard view showing the same position at all times.

# Concept

Definitions come from a source: a YAML or JSON document, a directory of
markdown nodes read through Loam, or an in-memory value built with the dsl
package. The definition is validated once and never mutated afterwards.
Every traversal operation (advance, back, jump, reset) goes through a single
controller, which publishes one immutable snapshot to all views before it
returns. Reaching an outcome produces a summary document that can be
exported.

# Usage

	eng, err := carepath.Open(ctx, "./hypertension.yaml")
	if err != nil {
		log.Fatal(err)
	}
	ctrl := eng.Controller()

	for !ctrl.Wizard().Terminal() {
		fmt.Println(ctrl.Current().Label)
		for i, e := range ctrl.Available() {
			fmt.Printf("  %d) %s\n", i+1, e.Label)
		}
		// read a choice i from the user
		if err := ctrl.Choose(i); err != nil {
			log.Println(err)
		}
	}

	doc, _ := eng.Summary()
	fmt.Print(summary.Markdown(doc))
*/
package carepath
