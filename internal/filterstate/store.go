// Package filterstate holds the shared mutable filter state (category
// selections and the time window) and fans out every change to the registered
// listeners and the fixed set of view adapters.
//
// Two states that would collapse into the same "nothing selected" value are
// kept distinct on purpose: a reset notification tells views to re-fetch
// unfiltered data, while a selection whose categories are all present but
// empty means "show nothing".
package filterstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/taxonomy"
)

// Default window bounds preselected for the St. Himark event week.
const (
	DefaultWindowStart = "2020-04-06T00:00"
	DefaultWindowEnd   = "2020-04-11T00:00"
)

// ErrBlankSearchTerm is returned when a vector search is submitted with an
// empty or whitespace-only term. The submission is rejected before any state
// change or notification.
var ErrBlankSearchTerm = errors.New("search term must not be blank")

// ErrUnknownCategory is returned when a selection mutation names a main
// category the taxonomy does not know. The selection map only ever holds
// taxonomy categories; callers cannot grow it with arbitrary keys.
var ErrUnknownCategory = errors.New("unknown category")

// ChangeKind distinguishes an ordinary filter update from a reset.
type ChangeKind int

const (
	// ChangeUpdate is a normal mutation; Selection carries the effective
	// filter (the search pseudo-selection if a search triggered it, else the
	// current category selection).
	ChangeUpdate ChangeKind = iota

	// ChangeReset signals consumers to re-fetch unfiltered data. Selection
	// is nil, which is not the same as an all-empty selection.
	ChangeReset
)

// Change is the payload delivered to listeners and view adapters.
type Change struct {
	Kind       ChangeKind
	Selection  model.Selection
	Window     model.TimeWindow
	Generation uint64
}

// Unfiltered reports whether consumers should fetch the whole corpus rather
// than apply the selection.
func (c Change) Unfiltered() bool {
	return c.Kind == ChangeReset || c.Selection == nil
}

// Listener receives every change synchronously, in registration order.
type Listener func(Change)

// View is one of the fixed per-view update entry points invoked on every
// change. Updates run asynchronously and independently; an error from one
// view is logged here and never reaches the store or sibling views.
type View interface {
	Name() string
	Update(ctx context.Context, change Change) error
}

// Boundary selects which end of the time window a component edit applies to.
type Boundary string

const (
	BoundaryStart Boundary = "start"
	BoundaryEnd   Boundary = "end"
)

// Field selects which component of a window boundary is being edited.
type Field string

const (
	FieldDate   Field = "date"
	FieldHour   Field = "hour"
	FieldMinute Field = "minute"
)

// Store is the process-wide filter state container. All mutation methods
// notify synchronously registered listeners and then trigger every attached
// view's update.
type Store struct {
	mu         sync.Mutex
	tax        *taxonomy.Taxonomy
	selection  model.Selection
	window     model.TimeWindow
	generation uint64
	listeners  []Listener
	views      []View
	logger     *slog.Logger

	// pending holds one done channel per change whose view updates are
	// still running. Wait snapshots it, so concurrent mutations and waits
	// never share a counter.
	pending []chan struct{}
}

// New creates a Store with an empty selection entry per main category and
// the default event-week window.
func New(tax *taxonomy.Taxonomy, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	sel := make(model.Selection)
	for _, main := range tax.MainCategories() {
		sel[main] = nil
	}
	return &Store{
		tax:       tax,
		selection: sel,
		window:    model.TimeWindow{Start: DefaultWindowStart, End: DefaultWindowEnd},
		logger:    logger,
	}
}

// Subscribe registers a listener. Registration happens at initialization;
// the listener list is only iterated afterwards.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// AttachViews registers the fixed set of per-view update entry points.
func (s *Store) AttachViews(views ...View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, views...)
}

// State returns a snapshot of the current selection and window.
func (s *Store) State() (model.Selection, model.TimeWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Clone(), s.window
}

// Generation returns the current filter generation. Views compare a change's
// generation against this before publishing a completed fetch; a stale
// generation means a newer filter change superseded the request.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ToggleSubcategory flips membership of label in the category's selection.
// The category must be a main category of the taxonomy.
func (s *Store) ToggleSubcategory(category, label string) error {
	if !s.tax.HasMain(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	current := s.selection[category]
	next := make([]string, 0, len(current)+1)
	found := false
	for _, l := range current {
		if strings.EqualFold(l, label) {
			found = true
			continue
		}
		next = append(next, l)
	}
	if !found {
		next = append(next, label)
	}
	s.selection[category] = next
	change := s.bumpLocked(ChangeUpdate, s.selection.Clone())
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// SelectAll sets the category's selection to its full subcategory list.
func (s *Store) SelectAll(category string) error {
	if !s.tax.HasMain(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	s.selection[category] = s.tax.Subcategories(category)
	change := s.bumpLocked(ChangeUpdate, s.selection.Clone())
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// ClearCategory empties the category's selection.
func (s *Store) ClearCategory(category string) error {
	if !s.tax.HasMain(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	s.selection[category] = nil
	change := s.bumpLocked(ChangeUpdate, s.selection.Clone())
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// SetTimeComponent merges one changed date/hour/minute component into the
// given window boundary and re-serializes the combined instant. A missing
// hour or minute defaults to "00"; without a date the boundary clears.
func (s *Store) SetTimeComponent(boundary Boundary, field Field, value string) {
	s.mu.Lock()
	var current string
	if boundary == BoundaryEnd {
		current = s.window.End
	} else {
		current = s.window.Start
	}

	date, hour, minute := splitInstant(current)
	switch field {
	case FieldDate:
		date = value
	case FieldHour:
		hour = value
	case FieldMinute:
		minute = value
	}
	combined := joinInstant(date, hour, minute)

	if boundary == BoundaryEnd {
		s.window.End = combined
	} else {
		s.window.Start = combined
	}
	change := s.bumpLocked(ChangeUpdate, s.selection.Clone())
	s.mu.Unlock()

	s.notify(change)
}

// Reset clears every category selection and both window bounds, then emits
// the distinguished reset notification: consumers re-fetch unfiltered data.
func (s *Store) Reset() {
	s.mu.Lock()
	for cat := range s.selection {
		s.selection[cat] = nil
	}
	s.window = model.TimeWindow{}
	change := s.bumpLocked(ChangeReset, nil)
	s.mu.Unlock()

	s.notify(change)
}

// SubmitVectorSearch validates the term and notifies with a singleton
// vector_search pseudo-selection. The stored category selection is left
// untouched; the search selection applies only to this notification.
func (s *Store) SubmitVectorSearch(term string) error {
	if strings.TrimSpace(term) == "" {
		return ErrBlankSearchTerm
	}

	s.mu.Lock()
	change := s.bumpLocked(ChangeUpdate, model.Selection{
		model.VectorSearchCategory: {term},
	})
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Wait blocks until every view update spawned by changes made so far has
// finished. Changes made concurrently with Wait track their own completion,
// so concurrent mutate-and-wait callers never interfere.
func (s *Store) Wait() {
	s.mu.Lock()
	pending := append([]chan struct{}(nil), s.pending...)
	s.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}

// bumpLocked advances the generation and builds the change payload. Caller
// holds s.mu.
func (s *Store) bumpLocked(kind ChangeKind, sel model.Selection) Change {
	s.generation++
	return Change{
		Kind:       kind,
		Selection:  sel,
		Window:     s.window,
		Generation: s.generation,
	}
}

// notify delivers the change to listeners synchronously, then triggers each
// attached view's update in its own goroutine. View failures are logged at
// this call site and never propagate; one view's failure cannot block a
// sibling's render.
func (s *Store) notify(change Change) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	views := append([]View(nil), s.views...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
	if len(views) == 0 {
		return
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.pending = append(s.pending, done)
	s.mu.Unlock()

	var updates sync.WaitGroup
	for _, v := range views {
		v := v
		updates.Add(1)
		go func() {
			defer updates.Done()
			if err := v.Update(context.Background(), change); err != nil {
				s.logger.Error("view update failed",
					"view", v.Name(),
					"generation", change.Generation,
					"err", err)
			}
		}()
	}

	go func() {
		updates.Wait()
		close(done)
		s.mu.Lock()
		for i, d := range s.pending {
			if d == done {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()
}

// splitInstant breaks a WindowLayout string into its date, hour, and minute
// components, tolerating partial values.
func splitInstant(instant string) (date, hour, minute string) {
	if instant == "" {
		return "", "", ""
	}
	parts := strings.SplitN(instant, "T", 2)
	date = parts[0]
	if len(parts) == 2 {
		hm := strings.SplitN(parts[1], ":", 2)
		hour = hm[0]
		if len(hm) == 2 {
			minute = hm[1]
		}
	}
	return date, hour, minute
}

// joinInstant re-serializes boundary components; missing hour/minute default
// to "00", and no date means an unset boundary.
func joinInstant(date, hour, minute string) string {
	if date == "" {
		return ""
	}
	if hour == "" {
		hour = "00"
	}
	if minute == "" {
		minute = "00"
	}
	return date + "T" + hour + ":" + minute
}
