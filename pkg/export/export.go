// Package export writes a filtered record set to an xlsx workbook and hands
// the file to a Sharer.
package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/sw33tLie/fundscope/pkg/records"
)

const (
	XLSX_MIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	NoDataMessage  = "No report data to export."
	FailedMessage  = "Unable to export to Excel."
	SuccessMessage = "Excel exported successfully!"
)

type Status int

const (
	Success Status = iota
	NoData
	Failed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NoData:
		return "no data"
	}
	return "failed"
}

// Outcome is the single result of an export. Err is for logs only; users see Message.
type Outcome struct {
	Status   Status
	Location string
	Rows     int
	Err      error
}

func (o Outcome) Message() string {
	switch o.Status {
	case Success:
		return SuccessMessage
	case NoData:
		return NoDataMessage
	}
	return FailedMessage
}

// Sharer takes a finished workbook and makes it available to the user. It
// returns where the file ended up.
type Sharer interface {
	Share(ctx context.Context, path, name, mime string) (string, error)
}

// Request names the sheet and file of one export. Header fixes the columns;
// when empty the keys of the first exported record are used.
type Request struct {
	Sheet    string
	FileName string
	Header   []string
}

type Sink struct {
	Sharer Sharer
	// TempDir is where workbooks are staged; empty means os.TempDir.
	TempDir string
}

// Export is best-effort: any failure collapses into a Failed outcome.
func (s *Sink) Export(ctx context.Context, req Request, recs []records.Record) Outcome {
	if len(recs) == 0 {
		return Outcome{Status: NoData}
	}
	if s.Sharer == nil {
		return Outcome{Status: Failed, Err: errors.New("no sharer configured")}
	}

	tmp, err := os.CreateTemp(s.TempDir, "fundscope-*.xlsx")
	if err != nil {
		return Outcome{Status: Failed, Err: errors.Wrap(err, "failed to create temp file")}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := WriteWorkbook(tmp, req.Sheet, req.Header, recs); err != nil {
		tmp.Close()
		return Outcome{Status: Failed, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Outcome{Status: Failed, Err: errors.Wrapf(err, "failed to write to %s", tmpPath)}
	}

	location, err := s.Sharer.Share(ctx, tmpPath, req.FileName, XLSX_MIME)
	if err != nil {
		return Outcome{Status: Failed, Err: errors.Wrap(err, "failed to share workbook")}
	}
	return Outcome{Status: Success, Location: location, Rows: len(recs)}
}

// WriteWorkbook writes a single-sheet workbook with one column per header key.
// A nil header falls back to the key set of the first record. Keys outside the
// header are not exported.
func WriteWorkbook(w io.Writer, sheet string, header []string, recs []records.Record) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return errors.Wrapf(err, "failed to name sheet %q", sheet)
		}
	}

	if len(header) == 0 && len(recs) > 0 {
		header = recs[0].Keys()
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for i, rec := range recs {
		row := make([]interface{}, len(header))
		for j, k := range header {
			if v, ok := rec.Get(k); ok {
				row[j] = v.Interface()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "failed to address row %d", i+2)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to encode workbook")
	}
	return nil
}

// DirSharer saves the workbook into a directory, the CLI's share surface.
type DirSharer struct {
	Dir string
}

func (d DirSharer) Share(ctx context.Context, path, name, mime string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}

	dst := filepath.Join(dir, filepath.Base(name))
	src, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read from %s", path)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dst)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", errors.Wrapf(err, "failed to write to %s", dst)
	}
	if err := out.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to write to %s", dst)
	}
	return dst, nil
}
