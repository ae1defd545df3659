// Package runtime implements the traversal state machine.
//
// A Machine holds the current node and the append-only path of PathEntry
// records. Advance appends, Back pops, JumpTo truncates by index lookup and
// Reset clears. Every transition is an explicit edge chosen by the caller;
// the machine never picks one on its own.
package runtime
