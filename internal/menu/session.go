package menu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/input/dispatch"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

type eventKind int

const (
	evStart eventKind = iota
	evKey
	evAccept
	evButton
	evUndo
	evSearch
	evZen
	evRender
	evForce
	evDismiss
	evCancel
)

func (k eventKind) String() string {
	switch k {
	case evStart:
		return "start"
	case evKey:
		return "key"
	case evAccept:
		return "accept"
	case evButton:
		return "button"
	case evUndo:
		return "undo"
	case evSearch:
		return "search"
	case evZen:
		return "zen"
	case evRender:
		return "render"
	case evForce:
		return "force"
	case evDismiss:
		return "dismiss"
	case evCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

type event struct {
	kind   eventKind
	key    relay.KeyEvent
	item   picklist.Item
	button picklist.Button
	gen    uint64
}

// hideState tells a hide the session asked for from one the user caused.
type hideState int32

const (
	hideIdle hideState = iota
	hideExpected
	hideUnexpected
)

// controller decides what a session does with its events.
type controller interface {
	start(s *session) error
	accept(s *session, it picklist.Item) error
}

// keyHandler is implemented by controllers matching typed keys. Without it
// the widget value is left to filter the list.
type keyHandler interface {
	key(s *session, k relay.KeyEvent) error
}

type buttonHandler interface {
	button(s *session, b picklist.Button) error
}

type undoer interface {
	undo(s *session) error
}

type searcher interface {
	search(s *session) error
}

type zenToggler interface {
	zen(s *session) error
}

// view is what the widget shows for a level.
type view struct {
	title       string
	placeholder string
	items       []picklist.Item
	buttons     []picklist.Button
	delay       time.Duration
	matchDesc   bool
	matchDetail bool
}

// session is a single run of a menu.
type session struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger
	ctrl   controller
	widget picklist.Widget
	queue  *dispatch.Queue[event]

	// tracker is fed by widget callbacks; the consumer only holds values.
	tracker dispatch.Tracker
	hide    atomic.Int32

	activeKey  string
	visibleKey string

	// Consumer state.
	current view
	shown   bool
	timer   *time.Timer
	gen     uint64
	closed  bool
	then    func(ctx context.Context) error

	// keysShown is set while the status shows the pending key prefix.
	keysShown bool

	cancels []func()
	sub     *relay.Subscription

	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// run shows a menu driven by ctrl and blocks until it ends.
func run(ctx context.Context, deps Deps, name string, ctrl controller, activeKey, visibleKey string) error {
	deps, err := deps.withDefaults()
	if err != nil {
		return err
	}

	s := &session{
		ctx:        ctx,
		deps:       deps,
		logger:     deps.Logger.With("menu", name, "session", uuid.NewString()),
		ctrl:       ctrl,
		widget:     deps.NewWidget(),
		activeKey:  activeKey,
		visibleKey: visibleKey,
		done:       make(chan struct{}),
	}
	s.queue = dispatch.NewQueue(s.handle, dispatch.WithPanicHandler(func(item any, r any, stack []byte) {
		s.logger.Error("menu panicked", "event", item, "panic", r, "stack", string(stack))
		s.close(fmt.Errorf("menu %s: panic: %v", name, r))
	}))

	s.cancels = append(s.cancels,
		s.widget.OnValueChanged(s.onValue),
		s.widget.OnAccept(s.onAccept),
		s.widget.OnHide(s.onHide),
		s.widget.OnButton(func(b picklist.Button) { s.queue.Push(event{kind: evButton, button: b}) }),
	)
	s.sub = deps.Relay.Subscribe(s.onRelay)
	stop := context.AfterFunc(ctx, func() { s.queue.Push(event{kind: evCancel}) })
	defer stop()

	s.logger.Debug("menu started")
	setContext(ctx, deps.Executor, s.logger, s.activeKey, true)
	s.queue.Push(event{kind: evStart})
	<-s.done

	if s.then != nil {
		return s.then(ctx)
	}
	return s.err
}

// onValue runs on the widget's goroutine. Deltas are computed here, in the
// order values are produced, and queued one grapheme at a time. Rejected
// values are forced back by the consumer.
func (s *session) onValue(v string) {
	if _, ok := s.ctrl.(keyHandler); !ok {
		return
	}
	delta, verdict := s.tracker.Accept(v)
	switch verdict {
	case dispatch.Extend:
		g := uniseg.NewGraphemes(delta)
		for g.Next() {
			s.queue.Push(event{kind: evKey, key: relay.KeyEvent{Key: g.Str()}})
		}
	case dispatch.Reject:
		s.queue.Push(event{kind: evForce})
	}
}

func (s *session) onAccept() {
	if it, ok := s.widget.ActiveItem(); ok {
		s.queue.Push(event{kind: evAccept, item: it})
	}
}

func (s *session) onHide() {
	if s.hide.CompareAndSwap(int32(hideIdle), int32(hideUnexpected)) {
		s.queue.Push(event{kind: evDismiss})
	}
}

func (s *session) onRelay(ev relay.Event) {
	switch ev.Kind {
	case relay.KindKey:
		s.queue.Push(event{kind: evKey, key: ev.Key})
	case relay.KindUndo:
		s.queue.Push(event{kind: evUndo})
	case relay.KindSearch:
		s.queue.Push(event{kind: evSearch})
	case relay.KindZen:
		s.queue.Push(event{kind: evZen})
	}
}

// handle is the queue consumer. It is the only place session state changes.
func (s *session) handle(ev event) {
	if s.closed {
		return
	}
	s.logger.Debug("menu event", "event", ev.kind, "key", ev.key.Key, "pending", s.queue.Len())

	var err error
	switch ev.kind {
	case evStart:
		err = s.ctrl.start(s)
		if err == nil && !s.closed && s.deps.Ready != nil {
			s.deps.Ready()
		}
	case evKey:
		if h, ok := s.ctrl.(keyHandler); ok {
			err = h.key(s, ev.key)
		}
	case evAccept:
		err = s.ctrl.accept(s, ev.item)
	case evButton:
		if h, ok := s.ctrl.(buttonHandler); ok {
			err = h.button(s, ev.button)
		}
	case evUndo:
		if h, ok := s.ctrl.(undoer); ok {
			err = h.undo(s)
		}
	case evSearch:
		if h, ok := s.ctrl.(searcher); ok {
			err = h.search(s)
		}
	case evZen:
		if h, ok := s.ctrl.(zenToggler); ok {
			err = h.zen(s)
		}
	case evRender:
		if ev.gen == s.gen && s.timer != nil {
			s.timer = nil
			s.reveal()
		}
	case evForce:
		s.setValue(s.tracker.Last())
	case evDismiss:
		s.shown = false
		setContext(s.ctx, s.deps.Executor, s.logger, s.visibleKey, false)
		s.close(nil)
	case evCancel:
		s.close(fmt.Errorf("%w: %w", ErrClosed, context.Cause(s.ctx)))
	}
	if err != nil {
		s.logger.Error("menu failed", "event", ev.kind, "error", err)
		s.close(err)
	}
}

// present shows v. With a delay the widget shows busy and empty until the
// timer fires; the entered value is kept so type-ahead extends it.
func (s *session) present(v view) {
	s.stopTimer()
	s.current = v
	s.widget.SetPlaceholder(v.placeholder)
	s.widget.SetButtons(v.buttons)
	s.widget.SetMatchOnDescription(v.matchDesc)
	s.widget.SetMatchOnDetail(v.matchDetail)

	if v.delay > 0 {
		s.widget.SetItems(nil)
		s.widget.SetBusy(true)
		gen := s.gen
		s.timer = time.AfterFunc(v.delay, func() {
			s.queue.Push(event{kind: evRender, gen: gen})
		})
	} else {
		s.reveal()
	}
	s.widget.SetTitle(v.title)
	s.show()
}

// refresh redraws the title and items of the current view without touching
// the value or a pending delay.
func (s *session) refresh(title string, items []picklist.Item) {
	s.current.title = title
	s.current.items = items
	if s.timer == nil {
		s.widget.SetItems(items)
	}
	s.widget.SetTitle(title)
}

func (s *session) reveal() {
	s.resetValue()
	s.widget.SetBusy(false)
	s.widget.SetItems(s.current.items)
}

// resetValue clears the widget value without it being read as input.
func (s *session) resetValue() {
	s.setValue("")
}

func (s *session) setValue(v string) {
	if s.widget.Value() == v {
		s.tracker.Hold(v)
		return
	}
	s.tracker.Expect(v)
	s.widget.SetValue(v)
}

func (s *session) stopTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *session) show() {
	if s.shown {
		return
	}
	s.hide.Store(int32(hideIdle))
	s.widget.Show()
	s.shown = true
	setContext(s.ctx, s.deps.Executor, s.logger, s.visibleKey, true)
}

// hideWidget hides the widget and waits until it is hidden.
func (s *session) hideWidget() {
	if !s.shown {
		return
	}
	if !s.hide.CompareAndSwap(int32(hideIdle), int32(hideExpected)) {
		// The user hid it first; the queued dismiss ends the session.
		return
	}
	<-s.widget.Hide()
	s.hide.CompareAndSwap(int32(hideExpected), int32(hideIdle))
	s.shown = false
	setContext(s.ctx, s.deps.Executor, s.logger, s.visibleKey, false)
}

// showKeys shows the pending key prefix until the status is next hidden.
func (s *session) showKeys(prefix string) {
	s.keysShown = true
	s.deps.Notifier.ShowPlain(prefix+"-", status.NoTimeout)
}

// hideStatus clears any status message.
func (s *session) hideStatus() {
	s.keysShown = false
	s.deps.Notifier.Hide()
}

// hideKeys clears the pending key prefix. Error messages stay.
func (s *session) hideKeys() {
	s.keysShown = false
	s.deps.Notifier.HideIfPlain()
}

// exec runs a command chain.
func (s *session) exec(commands []string, args []any) error {
	s.logger.Debug("running commands", "commands", commands)
	return command.ExecuteChain(s.ctx, s.deps.Executor, commands, args)
}

// close ends the session. Only the first call has an effect.
func (s *session) close(err error) {
	s.closeOnce.Do(func() {
		s.closed = true
		s.err = err
		s.stopTimer()
		s.queue.Close()
		s.sub.Cancel()
		for _, cancel := range s.cancels {
			cancel()
		}
		if s.shown {
			s.hide.Store(int32(hideExpected))
			<-s.widget.Hide()
		}
		s.widget.Dispose()
		if s.keysShown {
			s.keysShown = false
			s.deps.Notifier.HideIfPlain()
		}

		cleanup := context.WithoutCancel(s.ctx)
		setContext(cleanup, s.deps.Executor, s.logger, s.visibleKey, false)
		setContext(cleanup, s.deps.Executor, s.logger, s.activeKey, false)
		s.logger.Debug("menu closed", "error", err)
		close(s.done)
	})
}
