package cli

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/session"
)

var (
	tuiInputStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	tuiNoticeStyle = lipgloss.NewStyle().Foreground(colorYellow).Border(lipgloss.RoundedBorder()).BorderForeground(colorYellow).Padding(0, 1)
	tuiErrorStyle  = tuiNoticeStyle.Foreground(colorRed).BorderForeground(colorRed)
	tuiKeyStyle    = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// Messages
// =============================================================================

// progressMsg carries a controller status update.
type progressMsg session.Status

// generatedMsg reports a finished batch.
type generatedMsg struct {
	count int
	err   error
}

// exportedMsg reports a finished export.
type exportedMsg struct {
	path string
	res  *export.Result
	err  error
}

// =============================================================================
// ChartModel - Interactive generate/export screen
// =============================================================================

// saveFunc writes an export result and returns its path.
type saveFunc func(*export.Result) (string, error)

// ChartModel is the bubbletea model behind `chartdeck interactive`. It mirrors
// the web page: an amount input, a generate action on enter, an export action
// and a progress line.
type ChartModel struct {
	ctx      context.Context
	ctrl     *session.Controller
	save     saveFunc
	progress chan session.Status

	Input    string
	Status   string
	Notice   string
	Failed   bool // Notice reports an error, not a warning
	Saved    string
	Running  bool
	Charts   int
	Quitting bool
}

// NewChartModel creates the model. newController receives the progress
// listener to register on the controller it builds.
func NewChartModel(ctx context.Context, newController func(listen func(done, total int)) *session.Controller, save saveFunc) *ChartModel {
	m := &ChartModel{
		ctx:      ctx,
		save:     save,
		progress: make(chan session.Status, 64),
	}
	m.ctrl = newController(func(done, total int) {
		select {
		case m.progress <- m.ctrl.Status():
		default:
		}
	})
	return m
}

func (m *ChartModel) Init() tea.Cmd {
	return m.waitForProgress()
}

func (m *ChartModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-m.progress:
			return progressMsg(st)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case progressMsg:
		m.Status = session.Status(msg).Message()
		return m, m.waitForProgress()

	case generatedMsg:
		m.Running = false
		m.Status = ""
		m.Charts = msg.count
		if msg.err != nil {
			m.setNotice(msg.err)
		}
		return m, nil

	case exportedMsg:
		m.Running = false
		m.Status = ""
		switch {
		case msg.err != nil:
			m.setNotice(msg.err)
		default:
			m.Saved = msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m *ChartModel) setNotice(err error) {
	m.Notice = errors.UserMessage(err)
	m.Failed = !errors.IsWarning(err)
}

func (m *ChartModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		m.Quitting = true
		return m, tea.Quit

	case "enter":
		if m.Running {
			return m, nil
		}
		n, err := pipeline.ParseAmount(m.Input)
		if err != nil {
			m.setNotice(err)
			return m, nil
		}
		m.Notice, m.Failed, m.Saved = "", false, ""
		m.Running = true
		m.Status = session.Status{Phase: session.PhaseGenerating, Total: n}.Message()
		return m, m.generate(n)

	case "e":
		if !m.canExport() {
			return m, nil
		}
		m.Notice, m.Failed, m.Saved = "", false, ""
		m.Running = true
		return m, m.export()

	case "backspace":
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
		}
		return m, nil

	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.setInput(m.Input + key)
		}
		return m, nil
	}
}

// setInput stores s clamped into the valid amount range.
func (m *ChartModel) setInput(s string) {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Overflow: anything this long is above the maximum.
		n = pipeline.MaxAmount
	}
	m.Input = strconv.Itoa(pipeline.ClampAmount(n))
}

func (m *ChartModel) canExport() bool {
	return !m.Running && m.ctrl.CanExport()
}

func (m *ChartModel) generate(n int) tea.Cmd {
	return func() tea.Msg {
		handles, err := m.ctrl.Generate(m.ctx, n)
		return generatedMsg{count: len(handles), err: err}
	}
}

func (m *ChartModel) export() tea.Cmd {
	return func() tea.Msg {
		res, err := m.ctrl.Export(m.ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := m.save(res)
		return exportedMsg{path: path, res: res, err: err}
	}
}

func (m *ChartModel) View() string {
	if m.Quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(StyleTitle.Render("chartdeck"))
	b.WriteString("\n\n")

	input := StyleDim.Render("Aantal grafieken (max. " + strconv.Itoa(pipeline.MaxAmount) + ")")
	if m.Input != "" {
		input = tuiInputStyle.Render(m.Input)
	}
	b.WriteString("  " + iconInfo + " " + input + "\n\n")

	if m.Status != "" {
		b.WriteString("  " + m.Status + "\n")
	} else if m.Charts > 0 {
		b.WriteString("  " + StyleDim.Render(strconv.Itoa(m.Charts)+" grafieken") + "\n")
	}
	if m.Saved != "" {
		b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " " + StyleValue.Render(m.Saved) + "\n")
	}
	if m.Notice != "" {
		style := tuiNoticeStyle
		if m.Failed {
			style = tuiErrorStyle
		}
		b.WriteString(style.Render(m.Notice) + "\n")
	}

	b.WriteString("\n")
	exportKey := StyleDim.Render("e export")
	if m.canExport() {
		exportKey = tuiKeyStyle.Render("e") + " export"
	}
	b.WriteString(StyleDim.Render("0-9 amount  ") + tuiKeyStyle.Render("⏎") + " generate  " + exportKey + "  " + tuiKeyStyle.Render("q") + " quit")
	b.WriteString("\n")
	return b.String()
}
