// Package view keeps the full-graph view and the step-by-step wizard in
// lockstep.
//
// A Controller owns the traversal Machine and is its only writer. Each
// successful operation produces exactly one Snapshot, which is delivered to
// every Subscriber before the operation returns. The two built-in views,
// GraphView and WizardView, are subscribers like any other, so they can
// never disagree on the current node.
package view
