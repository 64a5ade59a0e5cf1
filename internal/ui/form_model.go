package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/movierec/internal/emoji"
	"github.com/yildizm/movierec/internal/form"
	"github.com/yildizm/movierec/internal/logger"
	"github.com/yildizm/movierec/internal/recommend"
)

// focusField is the form control that receives keys
type focusField int

const (
	focusUserID focusField = iota
	focusAlgorithm
	focusSubmit
	focusFieldCount
)

const maxContentWidth = 80

// FormModel is the interactive recommendation form
type FormModel struct {
	state       *form.State
	recommender form.Recommender
	log         *logger.Logger

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	focus    focusField
	picked   bool // user moved the algorithm selector
	cancel   context.CancelFunc
	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewFormModel creates a form that fetches through rec, starting with
// algo selected
func NewFormModel(rec form.Recommender, algo recommend.Algorithm, log *logger.Logger) *FormModel {
	if log == nil {
		log = logger.Nop()
	}

	input := textinput.New()
	input.Placeholder = "e.g. 15"
	input.Prompt = ""
	input.CharLimit = 0 // free text, no length limit
	input.Width = 24
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &FormModel{
		state:       form.New(algo),
		recommender: rec,
		log:         log,
		input:       input,
		spinner:     spin,
		help:        help.New(),
		keys:        newKeyMap(),
		focus:       focusUserID,
	}
}

// State exposes the form state for inspection
func (m *FormModel) State() *form.State {
	return m.state
}

// Init starts the cursor blinking
func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and navigation
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case recommendationsMsg:
		return m.handleRecommendations(msg)
	case ConfigReloaded:
		return m.handleConfigReloaded(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}

	return m.updateInput(msg)
}

func (m *FormModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	return m, nil
}

func (m *FormModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.handleQuit()
	case key.Matches(msg, m.keys.submit):
		return m.handleSubmit()
	case key.Matches(msg, m.keys.nextField):
		return m.handleFocus(1)
	case key.Matches(msg, m.keys.prevField):
		return m.handleFocus(-1)
	}

	// Printable keys belong to the identifier while it has focus
	if m.focus == focusUserID {
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case m.focus == focusAlgorithm && key.Matches(msg, m.keys.nextAlgo):
		m.state.Algorithm = m.state.Algorithm.Next()
		m.picked = true
	case m.focus == focusAlgorithm && key.Matches(msg, m.keys.prevAlgo):
		m.state.Algorithm = m.state.Algorithm.Prev()
		m.picked = true
	}
	return m, nil
}

func (m *FormModel) handleQuit() (tea.Model, tea.Cmd) {
	m.cancelPending()
	m.quitting = true
	return m, tea.Quit
}

func (m *FormModel) handleFocus(delta int) (tea.Model, tea.Cmd) {
	m.focus = (m.focus + focusField(delta) + focusFieldCount) % focusFieldCount
	if m.focus == focusUserID {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

// handleSubmit triggers the request action from any field
func (m *FormModel) handleSubmit() (tea.Model, tea.Cmd) {
	m.state.UserID = m.input.Value()
	m.cancelPending()

	req, ok := m.state.Submit()
	if !ok {
		m.log.Debug("submit rejected: %s", m.state.Err())
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.log.DebugWithFields("submitting request", []logger.Field{
		logger.F("seq", fmt.Sprint(req.Seq)),
		logger.F("user_id", req.UserID),
		logger.F("algo", req.Algorithm.String()),
	})

	return m, tea.Batch(fetchCommand(ctx, m.recommender, req), m.spinner.Tick)
}

func (m *FormModel) handleRecommendations(msg recommendationsMsg) (tea.Model, tea.Cmd) {
	if !m.state.Resolve(msg.result) {
		m.log.Debug("dropped superseded result %d", msg.result.Seq)
		return m, nil
	}

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if msg.result.Err != nil && !errors.Is(msg.result.Err, context.Canceled) {
		m.log.Debug("request %d failed: %v", msg.result.Seq, msg.result.Err)
	}
	return m, nil
}

func (m *FormModel) handleConfigReloaded(msg ConfigReloaded) (tea.Model, tea.Cmd) {
	if msg.Config != nil {
		SetThemeByName(msg.Config.UI.Theme)
		emoji.SetEmojiDisabled(msg.Config.UI.NoEmoji)
		// A new default only replaces a selection the user never made
		if !m.picked {
			m.state.Algorithm = msg.Config.Algorithm()
		}
	}
	if msg.Recommender != nil {
		m.recommender = msg.Recommender
	}
	m.log.Info("applied reloaded configuration")
	return m, nil
}

// handleSpinnerTick keeps the indicator moving only while a request runs
func (m *FormModel) handleSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.state.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *FormModel) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// cancelPending abandons the in-flight request, if any
func (m *FormModel) cancelPending() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// View renders the form
func (m *FormModel) View() string {
	if m.quitting {
		return ""
	}

	styles := GetStyles()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.Title.Render(emoji.GetEmoji("movie")+" Movie Recommender"),
		"",
		m.renderUserID(styles),
		"",
		m.renderAlgorithms(styles),
		"",
		m.renderSubmit(styles),
		"",
		m.renderResults(styles),
		"",
		m.help.View(m.keys),
	)

	if m.width <= 0 || m.height <= 0 {
		return content
	}

	box := styles.Box.Width(min(m.width-4, maxContentWidth))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func (m *FormModel) frame(styles *Styles, field focusField) lipgloss.Style {
	if m.focus == field {
		return styles.Focused
	}
	return styles.Blurred
}

func (m *FormModel) renderUserID(styles *Styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.Label.Render("User ID"),
		m.frame(styles, focusUserID).Render(m.input.View()),
	)
}

func (m *FormModel) renderAlgorithms(styles *Styles) string {
	options := make([]string, 0, len(recommend.Algorithms()))
	for _, algo := range recommend.Algorithms() {
		if algo == m.state.Algorithm {
			options = append(options, styles.OptionSelected.Render(algo.String()))
		} else {
			options = append(options, styles.Option.Render(algo.String()))
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.Label.Render("Algorithm"),
		m.frame(styles, focusAlgorithm).Render(lipgloss.JoinHorizontal(lipgloss.Top, options...)),
	)
}

func (m *FormModel) renderSubmit(styles *Styles) string {
	label := "Get Recommendations"
	button := styles.Button.Render("[ " + label + " ]")
	if m.focus == focusSubmit {
		button = styles.ButtonFocused.Render("[ " + label + " ]")
	}

	if m.state.Pending() {
		pending := styles.Pending.Render(m.spinner.View() + " Fetching recommendations...")
		return lipgloss.JoinHorizontal(lipgloss.Center, button, "  ", pending)
	}
	return button
}

// renderResults draws exactly one of the error, list or empty states
func (m *FormModel) renderResults(styles *Styles) string {
	switch m.state.Phase() {
	case form.PhaseError:
		return styles.Error.Render(emoji.GetEmoji("error") + " " + m.state.Err())

	case form.PhaseResults:
		movies := m.state.Movies()
		lines := make([]string, 0, len(movies)+1)
		lines = append(lines, styles.Success.Render(fmt.Sprintf("%s Recommendations (%s)",
			emoji.GetEmoji("star"), m.state.Algorithm)))
		for i, movie := range movies {
			lines = append(lines, styles.Movie.Render(fmt.Sprintf("%2d. %s", i+1, movie.Title)))
		}
		return strings.Join(lines, "\n")

	default:
		return styles.Muted.Render(form.MsgEmpty)
	}
}

// Run shows the form until the user quits or ctx ends. attach, when
// set, receives the program before it starts so other goroutines can
// Send messages to it.
func Run(ctx context.Context, model *FormModel, attach func(*tea.Program)) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if attach != nil {
		attach(p)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
