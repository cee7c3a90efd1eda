// Package batch exports several views at once. Views share nothing, so each
// gets its own screen and they run side by side.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/export"
	"github.com/sw33tLie/fundscope/pkg/screen"
	"github.com/sw33tLie/fundscope/pkg/views"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything Run needs.
type Config struct {
	Views       []views.View
	Querier     views.Querier
	Sessions    screen.SessionSource
	Sink        *export.Sink
	Search      string
	Concurrency int    // defaults to 3 if <= 0
	Log         Logger // optional; nil = no logging

	// OnViewDone is called per view from worker goroutines. Nil = no callback.
	OnViewDone func(r ViewResult)
}

// ViewResult is the outcome of exporting one view.
type ViewResult struct {
	View    string
	Outcome export.Outcome
	Err     error
}

// Result holds the outcome of a batch, in the order views were given.
type Result struct {
	Views  []ViewResult
	Errors []error // non-fatal errors
}

func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("batch export needs a sink")
	}

	result := &Result{Views: make([]ViewResult, len(cfg.Views))}
	if len(cfg.Views) == 0 {
		return result, nil
	}

	idxChan := make(chan int, len(cfg.Views))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxChan {
				vr := runOne(ctx, cfg, cfg.Views[idx], log)

				mu.Lock()
				result.Views[idx] = vr
				if vr.Err != nil {
					result.Errors = append(result.Errors, vr.Err)
				}
				mu.Unlock()

				if cfg.OnViewDone != nil {
					cfg.OnViewDone(vr)
				}
			}
		}()
	}

	for i := range cfg.Views {
		idxChan <- i
	}
	close(idxChan)
	wg.Wait()

	return result, nil
}

func runOne(ctx context.Context, cfg Config, v views.View, log Logger) ViewResult {
	s := screen.New(v, cfg.Querier, cfg.Sessions, cfg.Sink, nil)
	s.SetSearch(cfg.Search)

	if _, err := s.Refresh(ctx); err != nil {
		log.Warnf("Failed to load %s: %v", v.Name(), err)
		return ViewResult{View: v.Name(), Outcome: export.Outcome{Status: export.Failed, Err: err}, Err: fmt.Errorf("%s: %w", v.Name(), err)}
	}
	if page := s.Page(); page.Outcome != acgfund.OutcomeOK {
		log.Warnf("%s: %s, exporting what was read", v.Name(), page.Outcome)
	}

	out := s.Export(ctx)
	switch out.Status {
	case export.Success:
		log.Debugf("Exported %d rows of %s to %s", out.Rows, v.Name(), out.Location)
	case export.NoData:
		log.Infof("Nothing to export for %s", v.Name())
	default:
		log.Errorf("Export of %s failed: %v", v.Name(), out.Err)
		return ViewResult{View: v.Name(), Outcome: out, Err: fmt.Errorf("%s: %w", v.Name(), out.Err)}
	}
	return ViewResult{View: v.Name(), Outcome: out}
}
