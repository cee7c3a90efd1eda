package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/internal/utils"
	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/export"
	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/screen"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/theme"
	"github.com/sw33tLie/fundscope/pkg/views"
	"gopkg.in/yaml.v3"
)

const missingSessionMessage = "Missing login session. Run 'fundscope login' first."

var errMissingSession = errors.New(missingSessionMessage)

// addListFlags registers the flags shared by every command that prints records.
func addListFlags(c *cobra.Command) {
	c.Flags().StringP("search", "s", "", "Only keep rows containing this text (case-insensitive, any column)")
	c.Flags().String("export", "", "Also export the visible rows as an xlsx workbook into this directory")
	c.Flags().StringP("output", "o", "table", "Output format. Supported: table, json, yaml, txt")
	c.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")
	c.Flags().Bool("all-columns", false, "Show every column instead of the first 5 and a details marker")
	c.Flags().Int("details", 0, "Show every field of one row, by its position in the listing (starting at 1)")
}

// loadView loads v once, applying --search and then setup. The returned screen
// keeps the loaded rows; its session source is closed and must not be
// refreshed again.
func loadView(cmd *cobra.Command, v views.View, setup ...func(*screen.Screen)) (*screen.Screen, error) {
	client, err := newAPIClient(cmd)
	if err != nil {
		return nil, err
	}
	db, err := openSessionDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	exportDir, _ := cmd.Flags().GetString("export")
	sink := &export.Sink{Sharer: export.DirSharer{Dir: exportDir}}

	sc := screen.New(v, client, db, sink, utils.Log)
	if search, err := cmd.Flags().GetString("search"); err == nil {
		sc.SetSearch(search)
	}
	for _, fn := range setup {
		fn(sc)
	}

	if _, err := sc.Refresh(cmd.Context()); err != nil {
		if errors.Is(err, storage.ErrMissingSession) {
			return nil, errMissingSession
		}
		return nil, err
	}
	if page := sc.Page(); page.Outcome != acgfund.OutcomeOK {
		utils.Log.Warnf("Response for %s could not be read (%s), showing no rows", v.Name(), page.Outcome)
	}
	return sc, nil
}

// showView prints the visible rows of sc and exports them when --export is set.
func showView(cmd *cobra.Command, sc *screen.Screen, title string) error {
	format, _ := cmd.Flags().GetString("output")
	delimiter, _ := cmd.Flags().GetString("delimiter")
	allColumns, _ := cmd.Flags().GetBool("all-columns")
	details, _ := cmd.Flags().GetInt("details")
	t := currentTheme(cmd)

	visible := sc.Visible()
	if format == "table" && title != "" {
		fmt.Println(t.Title.Render(title) + " " + t.Muted.Render(fmt.Sprintf("(%d of %d)", len(visible), len(sc.Records()))))
		if header := sc.Header(); header.Len() > 0 {
			fmt.Println(t.RenderDetails(header))
		}
	}
	if details > 0 {
		if err := writeDetails(os.Stdout, t, format, delimiter, visible, details); err != nil {
			return err
		}
	} else if err := writeRecords(os.Stdout, t, format, delimiter, sc.Columns(), visible, allColumns); err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("export"); dir != "" {
		out := sc.Export(cmd.Context())
		switch out.Status {
		case export.Success:
			fmt.Printf("%s %s\n", out.Message(), t.Muted.Render(out.Location))
		case export.NoData:
			fmt.Println(out.Message())
		default:
			utils.Log.Debugf("Export failed: %v", out.Err)
			fmt.Println(t.Error.Render(out.Message()))
		}
	}
	return nil
}

// writeRecords renders recs in one of the supported output formats.
func writeRecords(w io.Writer, t theme.Theme, format, delimiter string, cols records.Columns, recs []records.Record, allColumns bool) error {
	if allColumns {
		cols = records.Columns{All: cols.All, Inline: cols.All}
	}
	if recs == nil {
		recs = []records.Record{}
	}

	switch strings.ToLower(format) {
	case "table", "":
		if len(recs) == 0 {
			_, err := fmt.Fprintln(w, t.Muted.Render("No records found."))
			return err
		}
		_, err := fmt.Fprintln(w, t.RenderTable(cols, recs))
		return err
	case "json":
		b, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(recs)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "txt":
		keys := cols.Inline
		for _, rec := range recs {
			if _, err := fmt.Fprintln(w, strings.Join(rec.Row(keys), delimiter)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (supported: table, json, yaml, txt)", format)
	}
}

// writeDetails prints every field of the row-th record (1-based), the long
// form behind the table's Details column.
func writeDetails(w io.Writer, t theme.Theme, format, delimiter string, recs []records.Record, row int) error {
	if row < 1 || row > len(recs) {
		return fmt.Errorf("row %d does not exist, the listing has %d rows", row, len(recs))
	}
	rec := recs[row-1]
	if format == "table" || format == "" {
		_, err := fmt.Fprint(w, t.RenderDetails(rec))
		return err
	}
	one := []records.Record{rec}
	return writeRecords(w, t, format, delimiter, records.Layout(one), one, true)
}
