package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// routesMsg carries the records of one snapshot.
type routesMsg struct{ records []telemetry.LatencyRecord }

// eventMsg carries a network event log line.
type eventMsg struct {
	line string
	ev   telemetry.NetworkEvent
}

// adminMsg reports admin server status.
type adminMsg struct{ active bool }

// InjectFunc creates an incident from the TUI dialog.
type InjectFunc func(telemetry.EventType, telemetry.Severity, []string) (telemetry.NetworkEvent, error)

type setInjectMsg struct{ fn InjectFunc }

const (
	slowestRoutes       = 10
	maxLogLines         = 1000
	maxSectionHeightPct = 0.2
	injectPlaceholder   = "type,severity,id id ..."
)

// TUIWriter renders records and events using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter. When the
// user quits the program the process receives an interrupt.
func NewTUIWriter(exchanges []catalog.Exchange) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(exchanges), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

func recordLine(r telemetry.LatencyRecord) string {
	line := fmt.Sprintf("%s[%s]%s %s%s%s -> %s%s%s %s%.2fms%s",
		colorGray, r.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, r.From, colorReset,
		colorCyan, r.To, colorReset,
		statusColor(r.Status), r.Latency, colorReset)
	if r.PacketLoss != nil {
		line += fmt.Sprintf(" %sloss=%.2f%%%s", colorYellow, *r.PacketLoss, colorReset)
	}
	return line
}

// Write implements RecordWriter.
func (w *TUIWriter) Write(r telemetry.LatencyRecord) error {
	w.program.Send(logMsg{line: recordLine(r)})
	w.program.Send(routesMsg{records: []telemetry.LatencyRecord{r}})
	return nil
}

// WriteBatch logs a one line summary of the snapshot and refreshes the
// route table.
func (w *TUIWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	if len(recs) == 0 {
		return nil
	}
	counts := map[telemetry.LatencyStatus]int{}
	var sum float64
	for _, r := range recs {
		counts[r.Status]++
		sum += r.Latency
	}
	line := fmt.Sprintf("%s[%s]%s %sSNAPSHOT%s records=%d avg=%.2fms %slow=%d%s %smedium=%d%s %shigh=%d%s %scritical=%d%s",
		colorGray, recs[0].Timestamp.Format(time.RFC3339), colorReset,
		colorMagenta, colorReset,
		len(recs), sum/float64(len(recs)),
		colorGreen, counts[telemetry.StatusLow], colorReset,
		colorYellow, counts[telemetry.StatusMedium], colorReset,
		colorRed, counts[telemetry.StatusHigh], colorReset,
		colorMagenta, counts[telemetry.StatusCritical], colorReset)
	w.program.Send(logMsg{line: line})
	w.program.Send(routesMsg{records: recs})
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.NetworkEvent) error {
	end := "ongoing"
	if e.EndTime != nil {
		end = e.EndTime.Format(time.RFC3339)
	}
	line := fmt.Sprintf("%s[%s]%s %s%s/%s%s %s until %s: %s",
		colorGray, e.StartTime.Format(time.RFC3339), colorReset,
		severityColor(e.Severity), e.Type, e.Severity, colorReset,
		strings.Join(e.AffectedIDs, ","), end, e.Description)
	w.program.Send(eventMsg{line: line, ev: e})
	return nil
}

// WriteEvents outputs multiple events.
func (w *TUIWriter) WriteEvents(evs []telemetry.NetworkEvent) error {
	for _, e := range evs {
		_ = w.WriteEvent(e)
	}
	return nil
}

// SetAdminStatus updates the admin server indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetInjector registers the callback used by the incident dialog.
func (w *TUIWriter) SetInjector(fn InjectFunc) {
	w.program.Send(setInjectMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	names         map[string]string
	table         table.Model
	vp            viewport.Model
	evVP          viewport.Model
	logs          []string
	evLogs        []string
	counts        map[telemetry.LatencyStatus]int
	records       int
	admin         bool
	wrap          bool
	autoscroll    bool
	help          bool
	showSummary   bool
	header        string
	headerHeight  int
	height        int
	inject        InjectFunc
	injectInput   textinput.Model
	injectDialog  bool
	injectResult  string
	activeEvents  map[string]telemetry.NetworkEvent
}

func newTUIModel(exchanges []catalog.Exchange) tuiModel {
	cols := []table.Column{
		{Title: "From", Width: 22},
		{Title: "To", Width: 22},
		{Title: "Latency", Width: 9},
		{Title: "Status", Width: 8},
		{Title: "Loss %", Width: 7},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(slowestRoutes+1))
	names := make(map[string]string, len(exchanges))
	for _, e := range exchanges {
		names[e.ID] = e.Name
	}
	return tuiModel{
		names:        names,
		table:        t,
		vp:           viewport.New(0, 0),
		evVP:         viewport.New(0, 0),
		counts:       make(map[telemetry.LatencyStatus]int),
		autoscroll:   true,
		showSummary:  true,
		activeEvents: make(map[string]telemetry.NetworkEvent),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tableWidth := msg.Width
		if m.showSummary {
			tableWidth = msg.Width * 2 / 3
		}
		m.table.SetWidth(tableWidth)
		m.vp.Width = msg.Width
		m.evVP.Width = msg.Width
		m.height = msg.Height
		m.refreshHeader()
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshEvents()
	case tea.KeyMsg:
		if m.injectDialog {
			switch msg.Type {
			case tea.KeyEnter:
				m.injectResult = m.submitInject(m.injectInput.Value())
				m.injectDialog = false
				m.updateViewportHeight()
			case tea.KeyEsc:
				m.injectDialog = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.injectInput, cmd = m.injectInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			m.refreshEvents()
			m.updateViewportHeight()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.evVP.GotoBottom()
			}
			return m, nil
		case "i":
			m.injectInput = textinput.New()
			m.injectInput.Placeholder = injectPlaceholder
			m.injectInput.Focus()
			m.injectDialog = true
			m.updateViewportHeight()
			return m, nil
		case "p":
			m.showSummary = !m.showSummary
			if m.showSummary {
				m.table.SetWidth(m.vp.Width * 2 / 3)
			} else {
				m.table.SetWidth(m.vp.Width)
			}
			m.refreshHeader()
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.evVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.evVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.evVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.evVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				m.evVP, _ = m.evVP.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = appendCapped(m.logs, msg.line)
		m.refreshViewport()
	case eventMsg:
		m.evLogs = appendCapped(m.evLogs, msg.line)
		m.activeEvents[msg.ev.ID] = msg.ev
		m.updateViewportHeight()
		m.refreshEvents()
	case routesMsg:
		m.table.SetRows(slowestRows(msg.records, slowestRoutes))
		m.records = len(msg.records)
		m.counts = make(map[telemetry.LatencyStatus]int)
		for _, r := range msg.records {
			m.counts[r.Status]++
		}
		m.refreshHeader()
	case adminMsg:
		m.admin = msg.active
	case setInjectMsg:
		m.inject = msg.fn
	}
	return m, nil
}

func appendCapped(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

// slowestRows returns the n highest latency records as table rows.
func slowestRows(recs []telemetry.LatencyRecord, n int) []table.Row {
	sorted := append([]telemetry.LatencyRecord(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Latency > sorted[j].Latency })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	rows := make([]table.Row, 0, len(sorted))
	for _, r := range sorted {
		loss := "-"
		if r.PacketLoss != nil {
			loss = fmt.Sprintf("%.2f", *r.PacketLoss)
		}
		rows = append(rows, table.Row{r.From, r.To, fmt.Sprintf("%.1f", r.Latency), string(r.Status), loss})
	}
	return rows
}

// submitInject parses "type,severity,id id ..." and calls the injector.
func (m tuiModel) submitInject(val string) string {
	parts := strings.SplitN(val, ",", 3)
	if len(parts) != 3 {
		return "expected " + injectPlaceholder
	}
	if m.inject == nil {
		return "incident injection unavailable"
	}
	typ := telemetry.EventType(strings.TrimSpace(parts[0]))
	sev := telemetry.Severity(strings.TrimSpace(parts[1]))
	ids := strings.Fields(parts[2])
	ev, err := m.inject(typ, sev, ids)
	if err != nil {
		return err.Error()
	}
	return "injected " + ev.ID
}

func (m *tuiModel) refreshHeader() {
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())

	evLines := len(m.evLogs)
	if evLines == 0 {
		evLines = 1
	}
	if maxLines := m.maxSectionLines(); evLines > maxLines {
		evLines = maxLines
	}
	m.evVP.Height = evLines

	dialogHeight := 0
	if m.injectDialog {
		dialogHeight = 2
	}
	h := m.height - m.headerHeight - bottomHeight - (1 + m.evVP.Height) - dialogHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.evVP.GotoBottom()
		m.vp.GotoBottom()
	}
}

func (m tuiModel) wrapLines(lines []string, width int) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if m.wrap && width > 0 {
			out = append(out, wordwrap.String(l, width))
		} else {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func (m *tuiModel) refreshViewport() {
	m.vp.SetContent(m.wrapLines(m.logs, m.vp.Width))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.evLogs) > 0 {
		content = m.wrapLines(m.evLogs, m.evVP.Width)
	}
	m.evVP.SetContent(content)
	if m.autoscroll {
		m.evVP.GotoBottom()
	}
}

func (m tuiModel) maxSectionLines() int {
	h := int(float64(m.height) * maxSectionHeightPct)
	if h < 1 {
		h = 1
	}
	return h
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		"Events:",
		m.evVP.View(),
	}
	if m.injectDialog {
		sections = append(sections, divider, "Inject incident: "+m.injectInput.View())
	}
	sections = append(sections, divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

var statusStyles = map[telemetry.LatencyStatus]lipgloss.Style{
	telemetry.StatusLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	telemetry.StatusMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	telemetry.StatusHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	telemetry.StatusCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
}

func (m tuiModel) renderHeader() string {
	tableView := m.table.View()
	if !m.showSummary {
		return tableView
	}
	lines := []string{fmt.Sprintf("Records: %d", m.records)}
	for _, s := range []telemetry.LatencyStatus{telemetry.StatusLow, telemetry.StatusMedium, telemetry.StatusHigh, telemetry.StatusCritical} {
		lines = append(lines, statusStyles[s].Render(fmt.Sprintf("%-9s %d", s, m.counts[s])))
	}
	lines = append(lines, "", fmt.Sprintf("Events: %d", len(m.activeEvents)))
	ids := make([]string, 0, len(m.activeEvents))
	for id := range m.activeEvents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ev := m.activeEvents[id]
		for _, ex := range ev.AffectedIDs {
			name := m.names[ex]
			if name == "" {
				name = ex
			}
			lines = append(lines, fmt.Sprintf(" %s: %s", ev.Type, name))
		}
	}
	summary := strings.Join(lines, "\n")
	if width := m.vp.Width/3 - 1; m.wrap && width > 0 {
		summary = wordwrap.String(summary, width)
	}
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, summary)
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	line := fmt.Sprintf("Admin %s | Wrap %s | Scroll %s | Summary %s | i inject | h help",
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.showSummary))
	if m.injectResult != "" {
		line += " | " + m.injectResult
	}
	return line
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle line wrap",
		" s  toggle auto-scroll",
		" i  inject incident (type,severity,ids)",
		" p  toggle summary pane",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
