package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/reports"
	"github.com/sw33tLie/fundscope/pkg/theme"
)

func sampleRecords() []records.Record {
	return []records.Record{
		records.FromStrings("donorNo", "1", "donorName", "Alpha Fund", "balance", "10"),
		records.FromStrings("donorNo", "2", "donorName", "Beta Trust", "balance", "20"),
	}
}

func TestWriteRecordsFormats(t *testing.T) {
	recs := sampleRecords()
	cols := records.Layout(recs)

	tests := []struct {
		format string
		want   []string
	}{
		{"txt", []string{"1,Alpha Fund,10", "2,Beta Trust,20"}},
		{"json", []string{`"donorName": "Alpha Fund"`, `"donorNo": "2"`}},
		{"yaml", []string{"donorName: Alpha Fund", "balance: \"20\""}},
		{"table", []string{"donorNo", "Beta Trust"}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := writeRecords(&buf, theme.Plain(), tt.format, ",", cols, recs, false); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Fatalf("%s: output missing %q:\n%s", tt.format, w, buf.String())
			}
		}
	}
}

func TestWriteRecordsAllColumns(t *testing.T) {
	rec := records.FromStrings("a", "1", "b", "2", "c", "3", "d", "4", "e", "5", "f", "6", "g", "7")
	cols := records.Layout([]records.Record{rec})

	var buf bytes.Buffer
	if err := writeRecords(&buf, theme.Plain(), "txt", " ", cols, []records.Record{rec}, false); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1 2 3 4 5" {
		t.Fatalf("want inline columns only, got %q", got)
	}

	buf.Reset()
	if err := writeRecords(&buf, theme.Plain(), "txt", " ", cols, []records.Record{rec}, true); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1 2 3 4 5 6 7" {
		t.Fatalf("want every column, got %q", got)
	}
}

func TestWriteRecordsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, theme.Plain(), "csv", ",", records.Columns{}, nil, false); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestSelectReport(t *testing.T) {
	groups := reports.Group([]reports.Report{
		{Name: "Gifts - Monthly", ID: "1"},
		{Name: "Gifts - Annual", ID: "2"},
		{Name: "Pledges", ID: "3"},
	})

	opt, err := selectReport(groups, "Gifts", "Annual", "")
	if err != nil {
		t.Fatalf("selectReport: %v", err)
	}
	if opt.Value != "2" || opt.FullLabel != "Gifts - Annual" {
		t.Fatalf("unexpected option %+v", opt)
	}

	if _, err := selectReport(groups, "Gifts", "", "3"); err == nil {
		t.Fatal("an id outside the selected type must be rejected")
	}
	if _, err := selectReport(groups, "Loans", "Any", ""); err == nil {
		t.Fatal("unknown types must be rejected")
	}
	if opt, err := selectReport(groups, "", "", "3"); err != nil || opt.Label != "Pledges" {
		t.Fatalf("want Pledges by id, got %+v, %v", opt, err)
	}
}

func TestWriteDetails(t *testing.T) {
	rec := records.FromStrings("a", "1", "b", "2", "c", "3", "d", "4", "e", "5", "f", "6", "hidden", "secret")
	recs := []records.Record{records.FromStrings("a", "0"), rec}

	var buf bytes.Buffer
	if err := writeDetails(&buf, theme.Plain(), "table", " ", recs, 2); err != nil {
		t.Fatalf("writeDetails: %v", err)
	}
	if !strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "secret") {
		t.Fatalf("details should list the hidden fields:\n%s", buf.String())
	}

	buf.Reset()
	if err := writeDetails(&buf, theme.Plain(), "txt", ",", recs, 2); err != nil {
		t.Fatalf("writeDetails: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "1,2,3,4,5,6,secret" {
		t.Fatalf("unexpected txt details %q", got)
	}

	for _, row := range []int{0, 3} {
		if err := writeDetails(&buf, theme.Plain(), "table", " ", recs, row); err == nil {
			t.Fatalf("row %d should be rejected", row)
		}
	}
}

func TestConfigReadsDottedKeysFromEnv(t *testing.T) {
	t.Setenv("FUNDSCOPE_THEME_ACCENT", "#123456")
	prev := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { cfgFile = prev }()

	initConfig()
	if got := viper.GetString("theme.accent"); got != "#123456" {
		t.Fatalf("want the environment value, got %q", got)
	}
}
