package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
)

// RunPlain drives ctrl with line commands read from in, for pipes and dumb
// terminals. Reaching an outcome prints its summary; the walk stays open so
// the user can still go back, jump or restart. When the user quits or input
// runs out, RunPlain returns the summary of the outcome on screen, or nil
// if the walk stopped before one.
//
// Commands: a choice number, "b" (back), "r" (restart), "j <node>" (jump
// to a visited step), "q" (quit). Commands that change nothing are ignored
// without a message.
func RunPlain(ctx context.Context, ctrl *view.Controller, in io.Reader, out io.Writer) (*summary.Document, error) {
	scanner := bufio.NewScanner(in)
	if err := printStep(out, ctrl); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return summarize(ctrl, ctrl.Snapshot())
		}
		line := strings.TrimSpace(scanner.Text())

		var err error
		switch {
		case line == "":
			continue
		case line == "q":
			return summarize(ctrl, ctrl.Snapshot())
		case line == "b":
			err = ctrl.Back()
		case line == "r":
			ctrl.Reset()
		case strings.HasPrefix(line, "j "):
			err = ctrl.JumpTo(strings.TrimSpace(line[2:]))
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil {
				fmt.Fprintf(out, "unknown command %q\n", line)
				continue
			}
			err = ctrl.Choose(n - 1)
		}

		switch {
		case err == nil:
			if err := printStep(out, ctrl); err != nil {
				return nil, err
			}
		case errors.Is(err, domain.ErrNoOp):
		case domain.IsRecoverable(err):
			fmt.Fprintf(out, "! %v\n", err)
		default:
			return nil, err
		}
	}
}

// summarize returns the summary of snap, or nil when it is not on an outcome.
func summarize(ctrl *view.Controller, snap domain.Snapshot) (*summary.Document, error) {
	if !snap.Terminal {
		return nil, nil
	}
	doc, err := summary.FromSnapshot(ctrl.Graph().Definition(), snap)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func printStep(out io.Writer, ctrl *view.Controller) error {
	st := ctrl.View()
	fmt.Fprintf(out, "\n[%s] %s\n", st.Node.ID, st.Node.Label)
	if st.Node.Content != nil && st.Node.Content.Why != "" {
		fmt.Fprintf(out, "  %s\n", st.Node.Content.Why)
	}
	for i, e := range st.Choices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, e.Label)
	}

	doc, err := summarize(ctrl, st.Snapshot)
	if err != nil || doc == nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, summary.Markdown(*doc))
	fmt.Fprintln(out, "\nb back · j <node> jump to a step · r start over · q finish")
	return nil
}
