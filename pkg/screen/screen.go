package screen

import (
	"context"
	"sync"

	"github.com/sw33tLie/fundscope/pkg/export"
	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/views"
)

// SessionSource is anything that can hand out the stored session.
type SessionSource interface {
	LoadSession(ctx context.Context) (storage.Session, error)
}

type DateRange struct {
	From string
	To   string
}

// FilterState is owned by one screen and only changed by user input. The
// report selection and dates only apply to custom report screens.
type FilterState struct {
	SearchText        string
	SelectedType      string
	SelectedOperation string
	DateRange         *DateRange
}

func (f *FilterState) Reset() { *f = FilterState{} }

// apply fills a custom report from the selected operation and dates.
func (f FilterState) apply(v views.View) views.View {
	r, ok := v.(views.CustomReport)
	if !ok {
		return v
	}
	r.ReportID = f.SelectedOperation
	r.From, r.To = "", ""
	if f.DateRange != nil {
		r.From, r.To = f.DateRange.From, f.DateRange.To
	}
	return r
}

// Screen is one view's loaded data plus the user's filters.
type Screen struct {
	querier  views.Querier
	sessions SessionSource
	sink     *export.Sink

	mu     sync.Mutex
	view   views.View
	filter FilterState

	loader *Loader[views.Page]
}

func New(v views.View, q views.Querier, sessions SessionSource, sink *export.Sink, log Logger) *Screen {
	return &Screen{
		querier:  q,
		sessions: sessions,
		sink:     sink,
		view:     v,
		loader:   NewLoader[views.Page](log),
	}
}

// SetView swaps the view, e.g. when another advisor is opened. Call Refresh
// to load it.
func (s *Screen) SetView(v views.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// View is the view Refresh loads, with the filter state applied.
func (s *Screen) View() views.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.apply(s.view)
}

// Refresh loads the current view. applied is false when a newer Refresh
// started before this one finished; its result was then discarded.
func (s *Screen) Refresh(ctx context.Context) (applied bool, err error) {
	v := s.View()
	return s.loader.Load(ctx, func(ctx context.Context) (views.Page, error) {
		sess, err := s.sessions.LoadSession(ctx)
		if err != nil {
			return views.Page{}, err
		}
		return v.Load(ctx, s.querier, sess)
	})
}

func (s *Screen) SetSearch(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SearchText = q
}

// SelectType picks a report type and clears the operation picked under the
// previous one.
func (s *Screen) SelectType(typ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SelectedType = typ
	s.filter.SelectedOperation = ""
}

func (s *Screen) SelectOperation(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SelectedOperation = op
}

// SetDateRange sets the report dates; nil clears them.
func (s *Screen) SetDateRange(dr *DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr != nil {
		c := *dr
		dr = &c
	}
	s.filter.DateRange = dr
}

func (s *Screen) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter replaces the whole filter state.
func (s *Screen) SetFilter(f FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

func (s *Screen) State() State { return s.loader.State() }

func (s *Screen) Page() views.Page {
	page, _, _ := s.loader.Snapshot()
	return page
}

func (s *Screen) Err() error {
	_, _, err := s.loader.Snapshot()
	return err
}

// Records are all loaded rows, before search.
func (s *Screen) Records() []records.Record { return s.Page().Records }

// Header is the summary loaded along with the rows, if the view has one.
func (s *Screen) Header() records.Record { return s.Page().Header }

// Visible applies the search text to the loaded rows.
func (s *Screen) Visible() []records.Record {
	return records.Filter(s.Records(), s.Filter().SearchText)
}

// Columns come from the first loaded row, not the first visible one.
func (s *Screen) Columns() records.Columns { return records.Layout(s.Records()) }

// Export writes what is currently visible, under the same columns the table uses.
func (s *Screen) Export(ctx context.Context) export.Outcome {
	v := s.View()
	return s.sink.Export(ctx, export.Request{
		Sheet:    v.SheetName(),
		FileName: v.FileName(),
		Header:   s.Columns().All,
	}, s.Visible())
}

// Reset clears the search, the report selection and the loaded rows.
func (s *Screen) Reset() {
	s.mu.Lock()
	s.filter.Reset()
	s.mu.Unlock()
	s.loader.Reset()
}
