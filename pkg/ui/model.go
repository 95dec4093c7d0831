// Package ui is the terminal front end: a bubbletea program that drives an
// engine from a frame ticker and draws its frames on a braille cell grid.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/entropy/pkg/engine"
	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/render"
	"github.com/vanderheijden86/entropy/pkg/viewport"
	"github.com/vanderheijden86/entropy/pkg/watcher"
)

// headerRows is the title bar above the canvas.
const headerRows = 1

// panStep is how far one arrow key press pans, in screen pixels.
const panStep = 4 * CellW

// tickMsg drives physics and redraws.
type tickMsg time.Time

// FileChangedMsg is sent when the watched dataset changes on disk.
type FileChangedMsg struct{}

// GraphLoadedMsg carries the result of a reload.
type GraphLoadedMsg struct {
	Graph model.Graph
	Err   error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WatchFileCmd returns a command that waits for file changes and sends
// FileChangedMsg. It yields no message once the watcher stops.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	done := w.Done()
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return FileChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func reloadCmd(load func() (model.Graph, error)) tea.Cmd {
	return func() tea.Msg {
		g, err := load()
		return GraphLoadedMsg{Graph: g, Err: err}
	}
}

// Option configures a Model.
type Option func(*Model)

// WithWatcher reloads the graph with load whenever w reports a change.
func WithWatcher(w *watcher.Watcher, load func() (model.Graph, error)) Option {
	return func(m *Model) {
		m.watcher = w
		m.load = load
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithTheme replaces the default chrome theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// Model is the bubbletea model for the graph view.
type Model struct {
	engine  *engine.Engine
	theme   Theme
	keys    KeyMap
	help    help.Model
	watcher *watcher.Watcher
	load    func() (model.Graph, error)
	title   string

	width, height int
	cols, rows    int // canvas size in cells

	labels    bool
	showHelp  bool
	filterIdx int // 0 = all, otherwise 1 + index into model.NodeKinds

	status    string
	statusErr bool
}

// New creates the view for e. The engine should already hold a graph.
func New(e *engine.Engine, opts ...Option) Model {
	m := Model{
		engine: e,
		theme:  TestTheme(),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		title:  "entropy",
		labels: true,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.help.Styles.ShortKey = m.theme.DetailKey
	m.help.Styles.FullKey = m.theme.DetailKey
	m.resize()
	return m
}

// Init starts the frame ticker and the file watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.engine.Config().FrameInterval)}
	if m.watcher != nil && m.load != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.engine.Tick()
		return m, tickCmd(m.engine.Config().FrameInterval)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case FileChangedMsg:
		return m, tea.Batch(reloadCmd(m.load), WatchFileCmd(m.watcher))

	case GraphLoadedMsg:
		if msg.Err != nil {
			m.setError(fmt.Sprintf("reload failed: %v", msg.Err))
			return m, nil
		}
		m.engine.SetGraph(msg.Graph)
		m.setStatus(fmt.Sprintf("reloaded %d nodes, %d edges", len(msg.Graph.Nodes), len(msg.Graph.Edges)))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string) { m.status, m.statusErr = s, false }
func (m *Model) setError(s string)  { m.status, m.statusErr = s, true }

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = "", false
	e := m.engine

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.resize()
	case key.Matches(msg, m.keys.Fit):
		if _, ok := e.FitToView(); !ok {
			m.setStatus("nothing to fit")
		}
	case key.Matches(msg, m.keys.Layout):
		e.AutoLayout()
		m.setStatus("layout scattered")
	case key.Matches(msg, m.keys.Reheat):
		e.Reheat()
	case key.Matches(msg, m.keys.ZoomIn):
		e.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		e.ZoomOut()
	case key.Matches(msg, m.keys.Up):
		e.PanBy(0, panStep)
	case key.Matches(msg, m.keys.Down):
		e.PanBy(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		e.PanBy(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		e.PanBy(-panStep, 0)
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Focus):
		if id := e.State().Selected; id != "" {
			e.Focus(id)
		}
	case key.Matches(msg, m.keys.Clear):
		e.ClearSelection()
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	case key.Matches(msg, m.keys.Variant):
		m.nextVariant()
	case key.Matches(msg, m.keys.Labels):
		m.labels = !m.labels
	case key.Matches(msg, m.keys.Filter):
		m.applyFilter(msg.String())
	}
	return m, nil
}

// cycle moves the selection through the visible nodes in frame order.
func (m *Model) cycle(dir int) {
	f := m.engine.Frame()
	if f == nil || len(f.Nodes) == 0 {
		return
	}
	cur := -1
	sel := m.engine.State().Selected
	for i, n := range f.Nodes {
		if n.ID == sel {
			cur = i
			break
		}
	}
	next := 0
	switch {
	case cur >= 0:
		next = (cur + dir + len(f.Nodes)) % len(f.Nodes)
	case dir < 0:
		next = len(f.Nodes) - 1
	}
	m.engine.Select(f.Nodes[next].ID)
}

func (m *Model) copySelection() {
	id := m.engine.State().Selected
	if id == "" {
		m.setError("nothing selected")
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		m.setError(fmt.Sprintf("clipboard: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", id))
}

func (m *Model) nextVariant() {
	names := render.VariantNames()
	cur := ""
	if f := m.engine.Frame(); f != nil {
		cur = f.Variant
	}
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
		}
	}
	if err := m.engine.SetVariant(next); err != nil {
		m.setError(err.Error())
		return
	}
	m.setStatus("skin: " + next)
}

func (m *Model) applyFilter(k string) {
	idx := int(k[0] - '0')
	if idx > len(model.NodeKinds) {
		return
	}
	m.filterIdx = idx
	if idx == 0 {
		m.engine.SetFilter()
		m.setStatus("showing all kinds")
		return
	}
	kind := model.NodeKinds[idx-1]
	m.engine.SetFilter(kind)
	m.setStatus("showing " + string(kind))
}

// screenPoint maps a terminal cell to the engine's screen space. ok is false
// outside the canvas.
func (m Model) screenPoint(x, y int) (r2.Vec, bool) {
	row := y - headerRows
	if x < 0 || x >= m.cols || row < 0 || row >= m.rows {
		return r2.Vec{}, false
	}
	return CellCenter(x, row), true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p, inside := m.screenPoint(msg.X, msg.Y)
	e := m.engine

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		e.Wheel(-1, p)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		e.Wheel(1, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			e.PointerDown(p)
		}
	case msg.Action == tea.MouseActionRelease:
		if inside {
			e.PointerUp(p)
		} else {
			e.PointerCancel()
		}
	case msg.Action == tea.MouseActionMotion:
		if inside {
			e.PointerMove(p)
		} else {
			e.PointerCancel()
		}
	}
}

// footer builds the lines below the canvas.
func (m Model) footer() []string {
	var lines []string

	switch {
	case m.status != "" && m.statusErr:
		lines = append(lines, m.theme.Error.Render(m.status))
	case m.status != "":
		lines = append(lines, m.theme.Status.Render(m.status))
	default:
		lines = append(lines, m.details())
	}

	if m.showHelp {
		lines = append(lines, strings.Split(m.help.FullHelpView(m.keys.FullHelp()), "\n")...)
	} else {
		lines = append(lines, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lines
}

// details describes the selected (or hovered) node.
func (m Model) details() string {
	id := m.engine.State().Focus()
	if id == "" {
		return m.theme.Detail.Render("click or tab to select a node")
	}
	n, ok := m.engine.Node(id)
	if !ok {
		return ""
	}
	head := fmt.Sprintf("%s [%s]", n.Label(), n.Kind)
	room := m.width - runewidth.StringWidth(head) - 1
	if n.Description == "" || room <= 0 {
		return m.theme.DetailKey.Render(head)
	}
	desc := runewidth.Truncate(n.Description, room, "…")
	return m.theme.DetailKey.Render(head) + " " + m.theme.Detail.Render(desc)
}

// resize recomputes the canvas grid and tells the engine its new size.
func (m *Model) resize() {
	cols := max(m.width, 1)
	rows := max(m.height-headerRows-len(m.footer()), 1)
	if cols == m.cols && rows == m.rows {
		return
	}
	m.cols, m.rows = cols, rows
	m.engine.Resize(viewport.Size{W: float64(cols * CellW), H: float64(rows * CellH)})
}

func (m Model) header() string {
	f := m.engine.Frame()
	title := m.theme.Header.Render(m.title)

	info := "no graph"
	if f != nil && !f.Empty() {
		state := "settled"
		if f.Running {
			state = fmt.Sprintf("α %.3f", f.Alpha)
		}
		info = fmt.Sprintf("%d nodes · %d edges · zoom %.0f%% · %s · %s",
			len(f.Nodes), len(f.Edges), f.Transform.K*100, state, f.Variant)
	}
	if m.filterIdx > 0 {
		info += " · only " + string(model.NodeKinds[m.filterIdx-1])
	}
	return title + m.theme.HeaderDim.Render(info)
}

// View renders the header, canvas and footer.
func (m Model) View() string {
	f := m.engine.Frame()
	canvas := NewCanvas(m.cols, m.rows)
	if f != nil {
		v, err := render.VariantByName(f.Variant)
		if err != nil {
			v = render.Neon()
		}
		canvas.Draw(f, v, m.labels)
	}

	var sb strings.Builder
	sb.WriteString(m.header())
	sb.WriteByte('\n')
	sb.WriteString(canvas.Render(m.theme.Renderer))
	for _, line := range m.footer() {
		sb.WriteByte('\n')
		sb.WriteString(line)
	}
	return sb.String()
}

// Run starts a full-screen program for m. Cancelling ctx quits it.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
