package records

import "strings"

// MaxInlineColumns is how many columns a generic table shows before the rest
// move behind a details affordance.
const MaxInlineColumns = 5

// Rename maps one server column onto a display key.
type Rename struct {
	From string
	To   string
}

// Projection is a fixed, ordered rename map for one view.
type Projection []Rename

func (p Projection) Keys() []string {
	keys := make([]string, len(p))
	for i, r := range p {
		keys[i] = r.To
	}
	return keys
}

// Project reshapes raw rows for display. Missing or null columns become "".
func Project(raw []Record, p Projection) []Record {
	out := make([]Record, 0, len(raw))
	for _, rec := range raw {
		var display Record
		for _, rn := range p {
			v, ok := rec.Get(rn.From)
			if !ok || v.Kind == Null {
				v = StringValue("")
			}
			display.Set(rn.To, v)
		}
		out = append(out, display)
	}
	return out
}

// Filter keeps the records whose joined values contain query, ignoring case.
// A blank query returns records as is.
func Filter(records []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Text()), q) {
			out = append(out, rec)
		}
	}
	return out
}

// Columns describes which keys a table shows.
type Columns struct {
	All     []string
	Inline  []string
	Hidden  []string
	Details bool
}

// Layout derives the column set from the first record. Later records that
// carry other keys do not change it.
func Layout(records []Record) Columns {
	if len(records) == 0 {
		return Columns{}
	}
	all := records[0].Keys()
	cols := Columns{All: all, Inline: all}
	if len(all) > MaxInlineColumns {
		cols.Inline = all[:MaxInlineColumns]
		cols.Hidden = all[MaxInlineColumns:]
		cols.Details = true
	}
	return cols
}

// Row returns the record's values for keys, "" for missing ones.
func (r Record) Row(keys []string) []string {
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = r.GetString(k)
	}
	return row
}
