package confirm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrBusy is returned when a dialog is already open.
	ErrBusy = errors.New("confirm: another dialog is open")

	// ErrNoDialog is returned when answering while no dialog is open.
	ErrNoDialog = errors.New("confirm: no dialog is open")

	// ErrLoading is returned when answering a dialog whose action is running.
	ErrLoading = errors.New("confirm: dialog action in progress")

	// ErrNoCancel is returned by Reject on dialogs without a cancel button.
	ErrNoCancel = errors.New("confirm: dialog has no cancel option")
)

// Kind selects the dialog flavour.
type Kind string

const (
	KindConfirm Kind = "confirm"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Default button labels.
const (
	DefaultConfirmText = "OK"
	DefaultCancelText  = "Cancel"
)

// Options describes a dialog.
type Options struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	Kind        Kind   `json:"kind"`
	ConfirmText string `json:"confirm_text"`
	CancelText  string `json:"cancel_text"`
	HideCancel  bool   `json:"hide_cancel,omitempty"`
	Danger      bool   `json:"danger,omitempty"`
}

func (o Options) withDefaults() Options {
	if o.Kind == "" {
		o.Kind = KindConfirm
	}
	if o.ConfirmText == "" {
		o.ConfirmText = DefaultConfirmText
	}
	if o.CancelText == "" {
		o.CancelText = DefaultCancelText
	}
	return o
}

// Dialog is the presentation state of the gate.
type Dialog struct {
	Open    bool    `json:"open"`
	Options Options `json:"options"`
	Loading bool    `json:"loading"`
}

type dialog struct {
	opts      Options
	answer    chan bool
	hasAction bool
	loading   bool
}

// Gate serializes confirmation dialogs. The zero value is not usable;
// call New.
type Gate struct {
	mu     sync.Mutex
	cur    *dialog
	onOpen func(Dialog)
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithOnOpen registers fn to be called, on its own goroutine, each time
// a dialog opens. Presenters use it to render the dialog and answer it.
func WithOnOpen(fn func(Dialog)) Option {
	return func(g *Gate) {
		g.onOpen = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// New creates a Gate with no dialog open.
func New(opts ...Option) *Gate {
	g := &Gate{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Confirm asks a yes/no question. title defaults to "Confirm".
func (g *Gate) Confirm(ctx context.Context, message, title string) (bool, error) {
	return g.Show(ctx, Options{Title: orDefault(title, "Confirm"), Message: message, Kind: KindConfirm})
}

// Warning asks a yes/no question styled as dangerous. title defaults to "Warning".
func (g *Gate) Warning(ctx context.Context, message, title string) (bool, error) {
	return g.Show(ctx, Options{Title: orDefault(title, "Warning"), Message: message, Kind: KindWarning, Danger: true})
}

// Info shows a message with only an OK button. title defaults to "Information".
func (g *Gate) Info(ctx context.Context, message, title string) (bool, error) {
	return g.Show(ctx, Options{Title: orDefault(title, "Information"), Message: message, Kind: KindInfo, HideCancel: true})
}

// Error shows an error with only an OK button. title defaults to "Error".
func (g *Gate) Error(ctx context.Context, message, title string) (bool, error) {
	return g.Show(ctx, Options{Title: orDefault(title, "Error"), Message: message, Kind: KindError, HideCancel: true, Danger: true})
}

// Show opens a dialog and blocks until it is answered. Accept yields true;
// Reject, Dismiss and ctx cancellation yield false. ctx cancellation also
// returns ctx.Err().
func (g *Gate) Show(ctx context.Context, opts Options) (bool, error) {
	d, err := g.open(opts, false)
	if err != nil {
		return false, err
	}
	return g.wait(ctx, d)
}

// ConfirmAction opens a dialog and, if accepted, runs action while the
// dialog stays open in the loading state. It returns whether the dialog
// was accepted and the action's error.
func (g *Gate) ConfirmAction(ctx context.Context, opts Options, action func(context.Context) error) (bool, error) {
	d, err := g.open(opts, true)
	if err != nil {
		return false, err
	}
	ok, err := g.wait(ctx, d)
	if !ok || err != nil {
		return ok, err
	}

	defer g.close(d)
	return true, action(ctx)
}

// Accept answers the open dialog with true.
func (g *Gate) Accept() error {
	return g.resolve(true, false)
}

// Reject answers the open dialog with false through its cancel button.
func (g *Gate) Reject() error {
	return g.resolve(false, false)
}

// Dismiss closes the open dialog without choosing, which yields false.
func (g *Gate) Dismiss() error {
	return g.resolve(false, true)
}

// Dialog returns the current presentation state.
func (g *Gate) Dialog() Dialog {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

// Pending reports whether a dialog is open.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur != nil
}

func (g *Gate) viewLocked() Dialog {
	if g.cur == nil {
		return Dialog{}
	}
	return Dialog{Open: true, Options: g.cur.opts, Loading: g.cur.loading}
}

func (g *Gate) open(opts Options, hasAction bool) (*dialog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cur != nil {
		g.logger.Warn("confirm request refused, dialog open", "title", opts.Title)
		return nil, ErrBusy
	}
	g.cur = &dialog{
		opts:      opts.withDefaults(),
		answer:    make(chan bool, 1),
		hasAction: hasAction,
	}
	g.logger.Debug("dialog opened", "kind", g.cur.opts.Kind, "title", g.cur.opts.Title)

	if g.onOpen != nil {
		go g.onOpen(g.viewLocked())
	}
	return g.cur, nil
}

func (g *Gate) wait(ctx context.Context, d *dialog) (bool, error) {
	select {
	case ok := <-d.answer:
		return ok, nil
	case <-ctx.Done():
		g.close(d)
		g.logger.Debug("dialog cancelled", "title", d.opts.Title)
		return false, ctx.Err()
	}
}

func (g *Gate) resolve(answer, dismiss bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := g.cur
	if d == nil {
		return ErrNoDialog
	}
	if d.loading {
		return ErrLoading
	}
	if !answer && !dismiss && d.opts.HideCancel {
		return ErrNoCancel
	}

	if answer && d.hasAction {
		d.loading = true
	} else {
		g.cur = nil
	}
	d.answer <- answer
	g.logger.Debug("dialog answered", "title", d.opts.Title, "accepted", answer, "dismissed", dismiss)
	return nil
}

// close clears d if it is still the open dialog.
func (g *Gate) close(d *dialog) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur == d {
		g.cur = nil
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
