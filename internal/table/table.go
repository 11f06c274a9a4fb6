package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/manvel7/Antd-small-test/internal/collection"
	"github.com/manvel7/Antd-small-test/internal/confirm"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 5

// EmptyText is shown when there are no users.
const EmptyText = "No users yet. Start building your team!"

// DeleteTitle is the title of the delete confirmation.
const DeleteTitle = "Delete User"

// ErrRowNotFound is returned for row actions on an ID not in the table.
var ErrRowNotFound = errors.New("table: row not found")

// DeleteMessage is the delete confirmation text for a user named name.
func DeleteMessage(name string) string {
	return fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone.", name)
}

// Column is a table column.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Columns are the table columns in display order.
var Columns = []Column{
	{Key: "name", Title: "Name"},
	{Key: "age", Title: "Age"},
	{Key: "phone", Title: "Phone"},
	{Key: "country", Title: "Country"},
	{Key: "actions", Title: "Actions"},
}

// Row is one rendered user.
type Row struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	CountryName string `json:"country_name"`
	Deleting    bool   `json:"deleting,omitempty"`
}

// View is the render state of the table.
type View struct {
	Columns    []Column `json:"columns"`
	Rows       []Row    `json:"rows"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	// Loading is the full-table indicator: a fetch with nothing to show.
	Loading bool `json:"loading"`
	// Refreshing means rows are shown while a fetch revalidates them.
	Refreshing bool   `json:"refreshing"`
	EmptyText  string `json:"empty_text,omitempty"`
	Err        error  `json:"-"`
}

// Editor opens edit sessions. *session.Session implements it.
type Editor interface {
	OpenCreate() error
	OpenEdit(r user.Record) error
}

// Table reconciles the collection with the rendered rows.
type Table struct {
	coll     *collection.Collection
	editor   Editor
	gate     *confirm.Gate
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	page     int
	deleting map[string]bool
	err      error
}

// Option configures a Table.
type Option func(*Table)

// WithPageSize sets the rows per page.
func WithPageSize(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.pageSize = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// New creates a table over coll.
func New(coll *collection.Collection, editor Editor, gate *confirm.Gate, opts ...Option) *Table {
	t := &Table{
		coll:     coll,
		editor:   editor,
		gate:     gate,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
		page:     1,
		deleting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// View projects the current collection state.
func (t *Table) View() View {
	snap := t.coll.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()

	total := len(snap.Records)
	totalPages := (total + t.pageSize - 1) / t.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := min(max(t.page, 1), totalPages)

	v := View{
		Columns:    Columns,
		Rows:       []Row{},
		Total:      total,
		Page:       page,
		PageSize:   t.pageSize,
		TotalPages: totalPages,
		Loading:    snap.Loading && total == 0,
		Refreshing: snap.Loading && total > 0,
		Err:        t.err,
	}
	if v.Err == nil {
		v.Err = snap.Err
	}
	if total == 0 && !v.Loading {
		v.EmptyText = EmptyText
	}

	start := (page - 1) * t.pageSize
	end := min(start+t.pageSize, total)
	for _, r := range snap.Records[start:end] {
		v.Rows = append(v.Rows, Row{
			Key:         r.ID,
			Name:        r.Name,
			Age:         r.Age,
			Phone:       r.Phone,
			Country:     r.Country,
			CountryName: user.CountryName(r.Country),
			Deleting:    t.deleting[r.ID],
		})
	}
	return v
}

// SetPage selects the 1-based page shown by View. Out-of-range pages are
// clamped when rendering.
func (t *Table) SetPage(page int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = page
}

// Create opens a create session.
func (t *Table) Create() error {
	return t.editor.OpenCreate()
}

// Edit opens an edit session for row id.
func (t *Table) Edit(id string) error {
	rec, ok := t.coll.Find(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrRowNotFound)
	}
	return t.editor.OpenEdit(rec)
}

// Delete asks for confirmation and deletes row id if accepted. It returns
// whether the user confirmed. A failed delete leaves the row in place and
// sets View.Err.
func (t *Table) Delete(ctx context.Context, id string) (bool, error) {
	rec, ok := t.coll.Find(id)
	if !ok {
		return false, fmt.Errorf("delete %s: %w", id, ErrRowNotFound)
	}

	opts := confirm.Options{
		Title:   DeleteTitle,
		Message: DeleteMessage(rec.Name),
		Kind:    confirm.KindConfirm,
	}
	confirmed, err := t.gate.ConfirmAction(ctx, opts, func(ctx context.Context) error {
		t.setDeleting(id, true)
		defer t.setDeleting(id, false)
		return t.coll.Delete(ctx, id)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case !confirmed:
		t.logger.Debug("delete not confirmed", "id", id, "error", err)
	case err != nil:
		t.err = err
		t.logger.Error("delete failed", "id", id, "error", err)
	default:
		t.err = nil
	}
	return confirmed, err
}

// ClearError drops the last row action error.
func (t *Table) ClearError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = nil
}

func (t *Table) setDeleting(id string, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		t.deleting[id] = true
	} else {
		delete(t.deleting, id)
	}
}
