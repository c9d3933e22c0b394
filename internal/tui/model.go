// Package tui is the terminal host for the panel layout manager.
package tui

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/evanschultz/dockyard/internal/app"
	"github.com/evanschultz/dockyard/internal/domain"
	"github.com/evanschultz/dockyard/internal/layout"
)

// flushInterval paces coalesced pointer motion to roughly one frame.
const flushInterval = 16 * time.Millisecond

// headerRows and footerRows frame the board vertically.
const (
	headerRows = 1
	footerRows = 2
)

// gestureKind tracks which mouse gesture is in flight.
type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
)

// mouseGesture is the host-side record of the active mouse gesture.
type mouseGesture struct {
	kind  gestureKind
	panel domain.PanelID
	lastY int
}

// flushMsg fires when buffered gestures should be dispatched.
type flushMsg struct{}

// externalChangeMsg reports that another process wrote a slot.
type externalChangeMsg struct {
	slot string
	ok   bool
}

// redrawMsg reports that a shared manager changed outside Update.
type redrawMsg struct{}

// Model is the bubbletea model hosting one layout manager.
type Model struct {
	manager *app.Manager
	host    *host
	ctx     context.Context

	run    func(func(*app.Manager))
	shared bool

	keys  keyMap
	help  help.Model
	mdr   *markdownRenderer
	ready bool

	width  int
	height int

	selectedColumn int
	selectedPanel  int

	status      string
	statusLevel app.Level
	showInfo    bool

	gesture      mouseGesture
	flushPending bool

	changes    <-chan string
	copyText   func(string) error
	newID      func() string
	resizeStep float64
	created    int
}

// NewHost returns the PanelHost to pass to app.NewManager for a model built with NewModel.
func NewHost() app.PanelHost {
	return newHost()
}

// NewModel constructs the layout screen. panelHost must be the value returned by NewHost
// and given to the manager, otherwise status lines and shared redraws are not shown.
func NewModel(ctx context.Context, manager *app.Manager, panelHost app.PanelHost, opts ...Option) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	h := help.New()
	h.ShowAll = false
	hst, ok := panelHost.(*host)
	if !ok {
		hst = newHost()
	}
	m := Model{
		manager:    manager,
		host:       hst,
		ctx:        app.WithActor(ctx, app.Actor{Name: "terminal", Surface: app.SurfaceTUI}),
		keys:       newKeyMap(),
		help:       h,
		mdr:        &markdownRenderer{},
		status:     "ready",
		copyText:   clipboard.WriteAll,
		newID:      uuid.NewString,
		resizeStep: 50,
	}
	m.run = func(fn func(*app.Manager)) { fn(manager) }
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the optional watchers.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	if m.shared {
		cmds = append(cmds, waitForRedraw(m.host.redraw))
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		viewport := m.boardRect()
		m.run(func(mgr *app.Manager) { mgr.SetViewport(viewport) })
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMousePress(msg.X, msg.Y, msg.Button)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg.X, msg.Y)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg.X, msg.Y)

	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.selectedPanel--
		case tea.MouseWheelDown:
			m.selectedPanel++
		}
		m.clampSelection()
		return m, nil

	case flushMsg:
		m.flushPending = false
		m.flush()
		return m, nil

	case externalChangeMsg:
		if !msg.ok {
			return m, nil
		}
		var slot string
		m.run(func(mgr *app.Manager) { slot = mgr.Config().Slot })
		if msg.slot == slot && m.gesture.kind == gestureNone {
			m.run(func(mgr *app.Manager) { mgr.LoadLayout(m.ctx) })
			m.consumeStatus()
			m.status = "reloaded after external change: " + m.status
		}
		return m, waitForChange(m.changes)

	case redrawMsg:
		m.consumeStatus()
		m.clampSelection()
		return m, waitForRedraw(m.host.redraw)

	default:
		return m, nil
	}
}

// handleKey dispatches one key press.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showInfo {
		if key.Matches(msg, m.keys.quit) || key.Matches(msg, m.keys.cancel) || key.Matches(msg, m.keys.info) {
			m.showInfo = false
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		m.run(func(mgr *app.Manager) { mgr.Close(m.ctx) })
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.cancelGesture()
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.info):
		m.showInfo = true
	case key.Matches(msg, m.keys.selectLeft):
		m.selectedColumn--
		m.selectedPanel = 0
	case key.Matches(msg, m.keys.selectRight):
		m.selectedColumn++
		m.selectedPanel = 0
	case key.Matches(msg, m.keys.selectUp):
		m.selectedPanel--
	case key.Matches(msg, m.keys.selectDown):
		m.selectedPanel++
	case key.Matches(msg, m.keys.addColumn):
		m.apply(func(mgr *app.Manager) { mgr.AddColumn() })
	case key.Matches(msg, m.keys.removeColumn):
		m.apply(func(mgr *app.Manager) { mgr.RemoveColumn() })
	case key.Matches(msg, m.keys.removeCurrent):
		col := m.selectedColumn
		m.apply(func(mgr *app.Manager) { mgr.RemoveColumnAt(col) })
	case key.Matches(msg, m.keys.reset):
		m.apply(func(mgr *app.Manager) { mgr.ResetLayout() })
		m.selectedColumn, m.selectedPanel = 0, 0
	case key.Matches(msg, m.keys.save):
		m.apply(func(mgr *app.Manager) { mgr.SaveLayout(m.ctx) })
	case key.Matches(msg, m.keys.load):
		m.apply(func(mgr *app.Manager) { mgr.LoadLayout(m.ctx) })
	case key.Matches(msg, m.keys.newPanel):
		m.createPanel()
	case key.Matches(msg, m.keys.closePanel):
		if id, ok := m.selectedPanelID(); ok {
			m.apply(func(mgr *app.Manager) { mgr.UnregisterPanel(id) })
		}
	case key.Matches(msg, m.keys.movePrevCol):
		m.moveSelected(-1, 0)
	case key.Matches(msg, m.keys.moveNextCol):
		m.moveSelected(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		m.moveSelected(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveSelected(0, 1)
	case key.Matches(msg, m.keys.grow):
		m.resizeSelected(m.resizeStep)
	case key.Matches(msg, m.keys.shrink):
		m.resizeSelected(-m.resizeStep)
	case key.Matches(msg, m.keys.copyLayout):
		m.copyLayout()
	}
	m.clampSelection()
	return m, nil
}

// handleMousePress starts a drag, or a resize when the press lands on a panel's bottom row.
func (m Model) handleMousePress(x, y int, button tea.MouseButton) (tea.Model, tea.Cmd) {
	if button != tea.MouseLeft || m.showInfo {
		return m, nil
	}
	if m.gesture.kind != gestureNone {
		m.cancelGesture()
	}
	pos := cellCenter(x, y)
	var (
		frame layout.Frame
		lay   domain.Layout
	)
	m.run(func(mgr *app.Manager) {
		frame = mgr.Frame()
		lay = mgr.Layout()
	})
	id, ok := frame.PanelAt(pos)
	if !ok {
		if cf, hit := frame.ColumnAt(pos.X); hit {
			m.selectedColumn = cf.Index
			m.selectedPanel = 0
		}
		return m, nil
	}
	m.selectPanel(lay, id)
	bounds, _ := frame.PanelBounds(id)
	if float64(y)+1 >= bounds.Y+bounds.H {
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureBeginResize, PanelID: id})
		})
		m.gesture = mouseGesture{kind: gestureResize, panel: id, lastY: y}
	} else {
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureBeginDrag, PanelID: id, Pos: pos})
		})
		m.gesture = mouseGesture{kind: gestureDrag, panel: id, lastY: y}
	}
	return m, m.scheduleFlush()
}

// handleMouseMotion buffers pointer motion for the next frame tick.
func (m Model) handleMouseMotion(x, y int) (tea.Model, tea.Cmd) {
	switch m.gesture.kind {
	case gestureDrag:
		pos := cellCenter(x, y)
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GesturePointerMoved, Pos: pos})
		})
	case gestureResize:
		rows := y - m.gesture.lastY
		if rows == 0 {
			return m, nil
		}
		m.gesture.lastY = y
		delta := float64(rows) * m.unitsPerRow()
		id := m.gesture.panel
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureUpdateResize, PanelID: id, Delta: delta})
		})
	default:
		return m, nil
	}
	return m, m.scheduleFlush()
}

// handleMouseRelease ends the gesture and dispatches everything buffered.
func (m Model) handleMouseRelease(x, y int) (tea.Model, tea.Cmd) {
	switch m.gesture.kind {
	case gestureDrag:
		pos := cellCenter(x, y)
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GesturePointerMoved, Pos: pos})
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureEndDrag})
		})
	case gestureResize:
		id := m.gesture.panel
		m.run(func(mgr *app.Manager) {
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureEndResize, PanelID: id})
		})
	default:
		return m, nil
	}
	id := m.gesture.panel
	m.gesture = mouseGesture{}
	m.flush()
	var lay domain.Layout
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	m.selectPanel(lay, id)
	return m, nil
}

// scheduleFlush arms one frame tick unless one is already pending.
func (m *Model) scheduleFlush() tea.Cmd {
	if m.flushPending {
		return nil
	}
	m.flushPending = true
	return tea.Tick(flushInterval, func(time.Time) tea.Msg { return flushMsg{} })
}

// flush dispatches buffered gestures and surfaces any resulting status.
func (m *Model) flush() {
	m.run(func(mgr *app.Manager) {
		if mgr.Pending() > 0 {
			mgr.Flush()
		}
	})
	m.consumeStatus()
}

// cancelGesture abandons the active mouse gesture, restoring the prior arrangement.
func (m *Model) cancelGesture() {
	kind := m.gesture.kind
	m.gesture = mouseGesture{}
	m.run(func(mgr *app.Manager) {
		switch kind {
		case gestureDrag:
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureCancelDrag})
		case gestureResize:
			mgr.Enqueue(layout.GestureEvent{Kind: layout.GestureCancelResize})
		}
		mgr.Flush()
	})
	if kind != gestureNone {
		m.status = "gesture cancelled"
		m.statusLevel = app.LevelOK
	}
}

// apply runs one manager operation and shows its status.
func (m *Model) apply(fn func(*app.Manager)) {
	m.run(fn)
	m.consumeStatus()
}

// consumeStatus shows the most recent host status, if any.
func (m *Model) consumeStatus() {
	statuses := m.host.drain()
	if len(statuses) == 0 {
		return
	}
	last := statuses[len(statuses)-1]
	m.status = last.String()
	m.statusLevel = last.Level
}

// createPanel registers a placeholder panel in the selected column.
func (m *Model) createPanel() {
	m.created++
	id := domain.PanelID("panel-" + shortID(m.newID()))
	spec := app.PanelSpec{
		ID:     id,
		Title:  fmt.Sprintf("Panel %d", m.created),
		Column: m.selectedColumn,
	}
	m.apply(func(mgr *app.Manager) { mgr.RegisterPanel(spec) })
	var lay domain.Layout
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	m.selectPanel(lay, id)
}

// moveSelected shifts the selected panel by dCol columns or dPos positions.
func (m *Model) moveSelected(dCol, dPos int) {
	id, ok := m.selectedPanelID()
	if !ok {
		return
	}
	var lay domain.Layout
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	col, pos := m.selectedColumn, m.selectedPanel
	if dCol != 0 {
		target := col + dCol
		if target < 0 || target >= len(lay.Columns) {
			m.status = "no column in that direction"
			m.statusLevel = app.LevelWarning
			return
		}
		m.apply(func(mgr *app.Manager) { mgr.MovePanel(id, target, lay.Columns[target].Len()) })
	} else {
		target := pos + dPos
		if target < 0 || target >= lay.Columns[col].Len() {
			return
		}
		m.apply(func(mgr *app.Manager) { mgr.MovePanel(id, col, target) })
	}
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	m.selectPanel(lay, id)
}

// resizeSelected runs one complete resize gesture on the selected panel.
func (m *Model) resizeSelected(delta float64) {
	id, ok := m.selectedPanelID()
	if !ok {
		return
	}
	var (
		size float64
		err  error
	)
	m.run(func(mgr *app.Manager) {
		if err = mgr.BeginResize(id); err != nil {
			return
		}
		size, err = mgr.UpdateResize(id, delta)
		_, _ = mgr.EndResize(id)
	})
	if err != nil {
		m.status = "resize refused: " + err.Error()
		m.statusLevel = app.LevelError
		return
	}
	m.status = fmt.Sprintf("%s resized to %s", id, formatUnits(size))
	m.statusLevel = app.LevelOK
}

// copyLayout writes the encoded layout to the clipboard.
func (m *Model) copyLayout() {
	var (
		data []byte
		err  error
	)
	m.run(func(mgr *app.Manager) { data, err = mgr.ExportLayout() })
	if err == nil {
		err = m.copyText(string(data))
	}
	if err != nil {
		m.status = "copy failed: " + err.Error()
		m.statusLevel = app.LevelError
		return
	}
	m.status = fmt.Sprintf("layout copied (%d bytes)", len(data))
	m.statusLevel = app.LevelOK
}

// selectedPanelID returns the id under the keyboard selection.
func (m Model) selectedPanelID() (domain.PanelID, bool) {
	var lay domain.Layout
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	if m.selectedColumn < 0 || m.selectedColumn >= len(lay.Columns) {
		return "", false
	}
	col := lay.Columns[m.selectedColumn]
	if m.selectedPanel < 0 || m.selectedPanel >= col.Len() {
		return "", false
	}
	return col.Panels[m.selectedPanel].ID, true
}

// selectPanel moves the keyboard selection onto id.
func (m *Model) selectPanel(lay domain.Layout, id domain.PanelID) {
	for _, col := range lay.Columns {
		if pos := col.IndexOf(id); pos >= 0 {
			m.selectedColumn, m.selectedPanel = col.Index, pos
			return
		}
	}
}

// clampSelection keeps the selection inside the current layout.
func (m *Model) clampSelection() {
	var lay domain.Layout
	m.run(func(mgr *app.Manager) { lay = mgr.Layout() })
	m.selectedColumn = clamp(m.selectedColumn, 0, len(lay.Columns)-1)
	if len(lay.Columns) == 0 {
		m.selectedPanel = 0
		return
	}
	m.selectedPanel = clamp(m.selectedPanel, 0, lay.Columns[m.selectedColumn].Len()-1)
}

// boardRect is the viewport handed to the manager for hit testing.
func (m Model) boardRect() domain.Rect {
	return domain.Rect{
		X: 0,
		Y: headerRows,
		W: float64(max(0, m.width)),
		H: float64(max(0, m.height-headerRows-footerRows)),
	}
}

// unitsPerRow converts one terminal row into layout size units for the dragged panel's column.
func (m Model) unitsPerRow() float64 {
	var (
		lay domain.Layout
		vp  domain.Rect
	)
	m.run(func(mgr *app.Manager) {
		lay = mgr.Layout()
		vp = mgr.Viewport()
	})
	if vp.H <= 0 {
		return 1
	}
	for _, col := range lay.Columns {
		if col.IndexOf(m.gesture.panel) >= 0 {
			return math.Max(col.Capacity, col.TotalSize()) / vp.H
		}
	}
	return 1
}

// View renders the header, the board and the footer.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderContent builds the full screen text.
func (m Model) renderContent() string {
	if !m.ready {
		return "loading..."
	}

	var (
		lay     domain.Layout
		frame   layout.Frame
		session layout.DragSession
		drag    bool
		slot    string
		md      string
	)
	m.run(func(mgr *app.Manager) {
		lay = mgr.Layout()
		frame = mgr.Frame()
		session, drag = mgr.DragSession()
		slot = mgr.Config().Slot
		if m.showInfo {
			md = mgr.DescribeMarkdown()
		}
	})

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	header := titleStyle.Render("dockyard") + statusStyle.Render(fmt.Sprintf("  slot %s  columns %d/%d", slot, len(lay.Columns), domain.MaxColumns))
	if lay.Default {
		header += statusStyle.Render("  default")
	}
	if drag {
		header += lipgloss.NewStyle().Foreground(accent).Render("  dragging " + string(session.PanelID))
	}

	board := m.renderBoard(lay, frame, session, drag, accent, dim)

	statusLine := lipgloss.NewStyle().Foreground(statusColor(m.statusLevel, muted)).Render(truncate(m.status, max(1, m.width)))
	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width))
	helpLine := lipgloss.NewStyle().Foreground(muted).Render(helpBubble.View(m.keys))

	content := header + "\n" + fitLines(board, int(m.boardRect().H)) + "\n" + statusLine + "\n" + helpLine
	if m.showInfo {
		overlay := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Render(m.mdr.render(md, max(24, m.width-12)))
		content = overlayOnContent(content, overlay, max(1, m.width), max(1, m.height))
	}
	return content
}

// renderBoard draws every column from the frame geometry.
func (m Model) renderBoard(lay domain.Layout, frame layout.Frame, session layout.DragSession, drag bool, accent, dim color.Color) string {
	if frame.Empty() {
		return ""
	}
	boardHeight := int(m.boardRect().H)
	columns := make([]string, 0, len(frame.Columns))
	for i, cf := range frame.Columns {
		width := int(cf.Bounds.W)
		if i == len(frame.Columns)-1 {
			width = m.width - int(cf.Bounds.X)
		}
		width = max(4, width)
		dropIndex := -1
		if drag && session.HasCandidate && session.Candidate.Column == cf.Index {
			dropIndex = session.Candidate.Index
		}
		col := lay.Columns[i]
		blocks := make([]string, 0, len(cf.Panels)+1)
		marker := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(strings.Repeat("▁", width))
		for pos, pf := range cf.Panels {
			if pos == dropIndex {
				blocks = append(blocks, marker)
			}
			p := col.Panels[pos]
			border := dim
			if cf.Index == m.selectedColumn && pos == m.selectedPanel {
				border = accent
			}
			rows := max(2, int(math.Round(pf.Bounds.H)))
			title := p.Title
			if title == "" {
				title = string(p.ID)
			}
			label := truncate(title, max(1, width-2))
			detail := truncate(fmt.Sprintf("%s%s", formatUnits(p.Size), fixedMark(p)), max(1, width-2))
			body := label
			if rows > 3 {
				body += "\n" + lipgloss.NewStyle().Foreground(dim).Render(detail)
			}
			style := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(border).
				Width(max(1, width-2)).
				Height(max(0, rows-2))
			blocks = append(blocks, fitLines(style.Render(body), rows))
		}
		if dropIndex >= len(cf.Panels) {
			blocks = append(blocks, marker)
		}
		if len(blocks) == 0 {
			blocks = append(blocks, lipgloss.NewStyle().Foreground(dim).Render(truncate("(empty)", width)))
		}
		columns = append(columns, fitLines(strings.Join(blocks, "\n"), boardHeight))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// waitForChange blocks until the next external slot change.
func waitForChange(changes <-chan string) tea.Cmd {
	return func() tea.Msg {
		slot, ok := <-changes
		return externalChangeMsg{slot: slot, ok: ok}
	}
}

// waitForRedraw blocks until the shared manager requests a redraw.
func waitForRedraw(redraw <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-redraw
		return redrawMsg{}
	}
}

// cellCenter maps a terminal cell to the point at its center.
func cellCenter(x, y int) domain.Point {
	return domain.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}

func statusColor(level app.Level, fallback color.Color) color.Color {
	switch level {
	case app.LevelWarning:
		return lipgloss.Color("214")
	case app.LevelError:
		return lipgloss.Color("203")
	default:
		return fallback
	}
}

func fixedMark(p domain.Panel) string {
	if p.Fixed {
		return " fixed"
	}
	return ""
}

func formatUnits(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// shortID keeps the first uuid group.
func shortID(id string) string {
	id = strings.TrimSpace(id)
	if head, _, ok := strings.Cut(id, "-"); ok && head != "" {
		return head
	}
	return id
}

// clamp bounds v to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(baseLayer)
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
