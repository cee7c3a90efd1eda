package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/export"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/views"
)

type sessions struct{ err error }

func (s sessions) LoadSession(ctx context.Context) (storage.Session, error) {
	if s.err != nil {
		return storage.Session{}, s.err
	}
	return storage.Session{Token: "t", UserID: "u"}, nil
}

type byOperation map[string]string

func (b byOperation) Search(ctx context.Context, d acgfund.Descriptor, token string) acgfund.Result {
	return acgfund.ParseRows(b[d.RequestType])
}

func TestRunExportsEveryView(t *testing.T) {
	dir := t.TempDir()
	q := byOperation{
		acgfund.DonorBalances:   `[{"Donor #":"1","Donor Name":"Alpha","EndDate":"x","Balance":"1"}]`,
		acgfund.AdvisorBalances: `{"data":[{"Advisor#":"A1","Advisor":"Grace","EndDate":"x","Balance":"2"}]}`,
		acgfund.UserAccessList:  `[]`,
	}

	var mu sync.Mutex
	var done []string
	res, err := Run(context.Background(), Config{
		Views:       []views.View{views.DonorBalances{}, views.AdvisorBalances{}, views.Users{}},
		Querier:     q,
		Sessions:    sessions{},
		Sink:        &export.Sink{Sharer: export.DirSharer{Dir: dir}, TempDir: t.TempDir()},
		Concurrency: 2,
		OnViewDone: func(r ViewResult) {
			mu.Lock()
			done = append(done, r.View)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %v", res.Errors)
	}

	want := []export.Status{export.Success, export.Success, export.NoData}
	for i, vr := range res.Views {
		if vr.Outcome.Status != want[i] {
			t.Fatalf("%s: want %s, got %s", vr.View, want[i], vr.Outcome.Status)
		}
	}
	for _, name := range []string{"DonorBalances.xlsx", "AdvisorBalances.xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "UsersList.xlsx")); !os.IsNotExist(err) {
		t.Fatal("an empty view must not produce a file")
	}

	sort.Strings(done)
	if len(done) != 3 || done[0] != "advisors" {
		t.Fatalf("callback should fire once per view, got %v", done)
	}
}

func TestRunCollectsSessionErrors(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Views:    []views.View{views.DonorBalances{}, views.Users{}},
		Querier:  byOperation{},
		Sessions: sessions{err: storage.ErrMissingSession},
		Sink:     &export.Sink{Sharer: export.DirSharer{Dir: t.TempDir()}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected one error per view, got %v", res.Errors)
	}
	for _, e := range res.Errors {
		if !errors.Is(e, storage.ErrMissingSession) {
			t.Fatalf("unexpected error %v", e)
		}
	}
}

func TestRunNeedsSink(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected an error without a sink")
	}
}
