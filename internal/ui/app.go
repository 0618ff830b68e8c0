package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/gateway"
	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/prefs"
	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/state"
)

const (
	defaultTick    = time.Second
	defaultColumns = 10
	toastTTL       = 3 * time.Second
	maxToasts      = 4
)

// Session is the part of the sync core the UI drives.
type Session interface {
	Snapshot() state.Snapshot
	Subscribe(fn state.Listener) (cancel func())
	Notices() (<-chan notify.Notice, func())
	Health() state.Health
	ConnectionState() channel.State
	Refresh(ctx context.Context) error
	Hold(ctx context.Context, seatID int64) error
	Confirm(ctx context.Context, seatID int64) error
	UserID() int64
	SetUserID(id int64) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   Session
	Columns   int
	ThemeName string
	PrefsPath string
	LogFile   string
	Tick      time.Duration
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	session   Session
	keys      keyMap
	prefsPath string
	logFile   string
	columns   int
	tick      time.Duration
	log       *zap.Logger
	now       func() time.Time

	// UI state
	theme    Theme
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	showLogs bool

	// Data state
	snapshot state.Snapshot
	health   state.Health
	conn     channel.State
	userID   int64
	cursor   int
	toasts   []toast

	// Log pane
	logViewport viewport.Model
	logLines    []string

	// Subscriptions
	updates     chan struct{}
	notices     <-chan notify.Notice
	unsubscribe []func()
}

type toast struct {
	notify.Notice
	expires time.Time
}

// New creates a new Bubble Tea model subscribed to the session.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	columns := opts.Columns
	if columns <= 0 {
		columns = defaultColumns
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	m := Model{
		ctx:       ctx,
		session:   opts.Session,
		keys:      DefaultKeyMap(),
		prefsPath: opts.PrefsPath,
		logFile:   opts.LogFile,
		columns:   columns,
		tick:      tick,
		log:       log.Named("ui"),
		now:       time.Now,
		theme:     GetTheme(opts.ThemeName),
		help:      help.New(),
		updates:   make(chan struct{}, 1),
	}

	if m.session != nil {
		updates := m.updates
		m.unsubscribe = append(m.unsubscribe, m.session.Subscribe(func(state.Snapshot) {
			select {
			case updates <- struct{}{}:
			default:
			}
		}))
		notices, cancel := m.session.Notices()
		m.notices = notices
		m.unsubscribe = append(m.unsubscribe, cancel)

		// Read after subscribing so a refresh that lands in between is not lost.
		m.snapshot = m.session.Snapshot()
		m.health = m.session.Health()
		m.conn = m.session.ConnectionState()
		m.userID = m.session.UserID()
	}
	return m
}

// Close drops the model's session subscriptions.
func (m Model) Close() {
	for _, cancel := range m.unsubscribe {
		cancel()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.session != nil {
		cmds = append(cmds, m.waitForSnapshot(), m.waitForNotice())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.clampCursor()
		if m.session != nil {
			m.health = m.session.Health()
		}
		return m, m.waitForSnapshot()

	case noticeMsg:
		m.addToast(notify.Notice(msg))
		return m, m.waitForNotice()

	case actionDoneMsg:
		if msg.err != nil {
			m.log.Debug("action finished with error",
				zap.String("action", msg.action),
				zap.Int64("seat_id", msg.seatID),
				zap.Error(msg.err),
			)
		}
		return m, nil

	case logLinesMsg:
		m.logLines = msg
		m.logViewport.SetContent(m.renderLogContent())
		m.logViewport.GotoBottom()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n\n")
		b.WriteString(toasts)
	}
	if m.showLogs {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, m.readLogsCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.NextUser):
		return m.switchUser(m.userID + 1)

	case key.Matches(msg, m.keys.PrevUser):
		return m.switchUser(m.userID - 1)

	case key.Matches(msg, m.keys.Select):
		return m, m.selectCmd()

	case key.Matches(msg, m.keys.Confirm):
		if seat, ok := m.selectedSeat(); ok {
			return m, m.actionCmd(gateway.KindConfirm, seat.ID)
		}
		return m, nil
	}

	m.moveCursor(msg)
	return m, nil
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.pruneToasts(now)
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.session != nil {
		m.conn = m.session.ConnectionState()
		m.health = m.session.Health()
	}
	if m.showLogs {
		cmds = append(cmds, m.readLogsCmd())
	}
	return m, tea.Batch(cmds...)
}

// selectCmd holds an available seat or confirms one the user already holds.
// Sold seats are left alone; a seat held by someone else is sent as a hold so
// the authority's reason is shown.
func (m Model) selectCmd() tea.Cmd {
	seat, ok := m.selectedSeat()
	if !ok {
		return nil
	}
	switch {
	case seat.Status == seatapi.StatusSold:
		return nil
	case seat.IsHeldBy(m.userID):
		return m.actionCmd(gateway.KindConfirm, seat.ID)
	default:
		return m.actionCmd(gateway.KindHold, seat.ID)
	}
}

func (m Model) switchUser(id int64) (tea.Model, tea.Cmd) {
	if m.session == nil || id <= 0 {
		return m, nil
	}
	if err := m.session.SetUserID(id); err != nil {
		m.addToast(notify.Notice{Kind: notify.KindError, Message: err.Error()})
		return m, nil
	}
	m.userID = id
	m.savePrefs()
	m.addToast(notify.Notice{Kind: notify.KindInfo, Message: fmt.Sprintf("Acting as user %d", id)})
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, UserID: m.userID}); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
	}
}

func (m *Model) addToast(n notify.Notice) {
	now := m.now()
	if n.At.IsZero() {
		n.At = now
	}
	m.toasts = append(m.toasts, toast{Notice: n, expires: now.Add(toastTTL)})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *Model) pruneToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type noticeMsg notify.Notice

type actionDoneMsg struct {
	action string
	seatID int64
	err    error
}

type logLinesMsg []string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForSnapshot() tea.Cmd {
	updates, session, ctx := m.updates, m.session, m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			return snapshotMsg(session.Snapshot())
		}
	}
}

func (m Model) waitForNotice() tea.Cmd {
	notices, ctx := m.notices, m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notices:
			if !ok {
				return nil
			}
			return noticeMsg(n)
		}
	}
}

func (m Model) actionCmd(kind gateway.Kind, seatID int64) tea.Cmd {
	if m.session == nil {
		return nil
	}
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		var err error
		if kind == gateway.KindConfirm {
			err = session.Confirm(ctx, seatID)
		} else {
			err = session.Hold(ctx, seatID)
		}
		if errors.Is(err, gateway.ErrActionPending) {
			err = nil
		}
		return actionDoneMsg{action: kind.String(), seatID: seatID, err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	if m.session == nil {
		return nil
	}
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: "refresh", err: session.Refresh(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	stop := context.AfterFunc(ctx, p.Quit)
	defer stop()

	_, err := p.Run()
	return err
}
