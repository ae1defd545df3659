package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pane int

const (
	paneWizard pane = iota
	paneGraph
)

// SnapshotMsg tells the model that the controller changed outside of its
// own key handling, e.g. after a hot reload.
type SnapshotMsg domain.Snapshot

type exportDoneMsg struct{ err error }

// Model is the dual-pane terminal UI: the wizard on the left and the whole
// graph on the right, both reading the same controller.
type Model struct {
	ctrl     *view.Controller
	render   func(string) (string, error)
	exporter *summary.Service

	focus     pane
	cursor    int
	status    string
	statusErr bool
	width     int
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithExporter enables the export key on outcome nodes.
func WithExporter(svc *summary.Service) Option {
	return func(m *Model) { m.exporter = svc }
}

// WithRenderer replaces the markdown renderer of the educational panel.
func WithRenderer(r func(string) (string, error)) Option {
	return func(m *Model) { m.render = r }
}

// NewModel creates the UI for ctrl.
func NewModel(ctrl *view.Controller, opts ...Option) Model {
	m := Model{ctrl: ctrl}
	for _, opt := range opts {
		opt(&m)
	}
	if m.render == nil {
		m.render = NewRenderer(60)
	}
	return m
}

// redrawDelay coalesces snapshots published outside the key loop.
const redrawDelay = 50 * time.Millisecond

// Run starts the UI on the alternate screen and blocks until it quits.
// Changes made to the controller from elsewhere, such as a hot reload, are
// forwarded to the program as SnapshotMsg.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the event loop reads, so it must never run under the
	// controller lock.
	redraw := view.Debounce(ctx, view.SubscriberFunc(func(s domain.Snapshot) {
		p.Send(SnapshotMsg(s))
	}), redrawDelay)
	unsubscribe := m.ctrl.Subscribe(redraw)
	defer redraw.Close()
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case SnapshotMsg:
		m.clampCursor()
		return m, nil
	case exportDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("summary exported")
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		if m.focus == paneWizard {
			m.focus = paneGraph
			m.cursor = len(m.ctrl.Snapshot().Path) - 1
			m.clampCursor()
		} else {
			m.focus = paneWizard
		}
		return m, nil
	case "r":
		m.ctrl.Reset()
		m.setStatus("restarted")
		return m, nil
	case "b", "backspace":
		m.apply(m.ctrl.Back())
		return m, nil
	}

	if m.focus == paneGraph {
		return m.updateGraph(key)
	}
	return m.updateWizard(key)
}

func (m Model) updateWizard(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "e", "?":
		if !m.ctrl.Wizard().ToggleExpanded() && ContentMarkdown(m.ctrl.Current()) == "" {
			m.setStatus("no details for this step")
		}
		return m, nil
	case "x":
		return m, m.export()
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		m.apply(m.ctrl.Choose(int(key[0] - '1')))
	}
	return m, nil
}

func (m Model) updateGraph(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "h", "up", "k":
		m.cursor--
		m.clampCursor()
	case "right", "l", "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter", " ":
		path := m.ctrl.Snapshot().Path
		if m.cursor >= 0 && m.cursor < len(path) {
			m.apply(m.ctrl.Select(path[m.cursor].NodeID))
			m.focus = paneWizard
		}
	}
	return m, nil
}

func (m Model) export() tea.Cmd {
	if m.exporter == nil {
		return nil
	}
	doc, err := summary.FromSnapshot(m.ctrl.Graph().Definition(), m.ctrl.Snapshot())
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}
	done := m.exporter.ExportAsync(context.Background(), doc)
	return func() tea.Msg { return exportDoneMsg{err: <-done} }
}

func (m *Model) apply(err error) {
	switch {
	case err == nil:
		m.status = ""
		m.statusErr = false
	case errors.Is(err, domain.ErrNoOp):
		m.setStatus(err.Error())
	default:
		m.setError(err)
	}
	m.clampCursor()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// clampCursor keeps the graph cursor on a node of the current path.
func (m *Model) clampCursor() {
	n := len(m.ctrl.Snapshot().Path)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ctrl.Snapshot()
	def := m.ctrl.Graph().Definition()

	header := titleStyle.Render(def.ID)
	if def.Version != "" {
		header += subtleStyle.Render(" v" + def.Version)
	}
	if def.Guideline != "" {
		header += "\n" + subtleStyle.Render(def.Guideline)
	}

	left, right := paneStyle, paneStyle
	if m.focus == paneWizard {
		left = focusedPaneStyle
	} else {
		right = focusedPaneStyle
	}
	if m.width > 0 {
		half := m.width/2 - 4
		left = left.Width(half)
		right = right.Width(half)
	}

	cursor := ""
	if m.focus == paneGraph && m.cursor < len(snap.Path) {
		cursor = snap.Path[m.cursor].NodeID
	}
	gv := m.ctrl.GraphView()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.wizardView(snap)),
		right.Render(renderGraph(gv.Layout(), gv.Highlight(), cursor)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer())
}

func (m Model) wizardView(snap domain.Snapshot) string {
	w := m.ctrl.Wizard()
	node := w.Node()
	var sb strings.Builder

	if crumbs := breadcrumb(m.ctrl, snap); crumbs != "" {
		sb.WriteString(subtleStyle.Render(crumbs) + "\n\n")
	}
	fmt.Fprintf(&sb, "%s %s\n\n", titleStyle.Render(node.Label), subtleStyle.Render("("+string(node.Type)+")"))

	if md := ContentMarkdown(node); md != "" {
		if w.Expanded() {
			out, err := m.render(md)
			if err != nil {
				out = md
			}
			sb.WriteString(strings.TrimSpace(out) + "\n\n")
		} else {
			sb.WriteString(subtleStyle.Render("e: show details") + "\n\n")
		}
	}

	if w.Terminal() {
		sb.WriteString(successStyle.Render("Outcome reached.") + "\n")
		if m.exporter != nil {
			sb.WriteString(keyStyle.Render("x") + " export summary  ")
		}
		sb.WriteString(keyStyle.Render("r") + " start over\n")
		return sb.String()
	}

	for i, e := range w.Choices() {
		line := fmt.Sprintf("%s %s", keyStyle.Render(fmt.Sprintf("%d", i+1)), choiceStyle.Render(e.Label))
		if e.Note != "" && w.Expanded() {
			line += "\n   " + subtleStyle.Render(e.Note)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func breadcrumb(ctrl *view.Controller, snap domain.Snapshot) string {
	parts := make([]string, 0, len(snap.Path))
	for _, e := range snap.Path {
		label := e.NodeID
		if n, ok := ctrl.Graph().GetNode(e.NodeID); ok {
			label = n.Label
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " › ")
}

func (m Model) footer() string {
	help := subtleStyle.Render("1-9 choose · b back · r restart · e details · tab graph · q quit")
	if m.focus == paneGraph {
		help = subtleStyle.Render("←/→ pick a visited step · enter jump · tab wizard · q quit")
	}
	if m.status == "" {
		return help
	}
	status := subtleStyle.Render(m.status)
	if m.statusErr {
		status = errorStyle.Render(m.status)
	}
	return status + "\n" + help
}
