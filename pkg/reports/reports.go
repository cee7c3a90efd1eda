// Package reports groups custom report names into a type → operation taxonomy
// and tracks the dependent type/operation selection.
package reports

import (
	"fmt"
	"strings"

	"github.com/sw33tLie/fundscope/pkg/records"
)

// Separator splits "Type - Operation" report names.
const Separator = " - "

// Report is one entry of the custom report list.
type Report struct {
	Name string
	ID   string
}

// FromRecords reads reports out of the raw list response. The name falls back
// to the id; rows without either are skipped.
func FromRecords(rows []records.Record) []Report {
	out := make([]Report, 0, len(rows))
	for _, r := range rows {
		id := firstNonEmpty(r, "AdminCustomReportID", "AdminCustomReportId")
		name := firstNonEmpty(r, "AdminCustomReportName")
		if name == "" {
			name = id
		}
		out = append(out, Report{Name: name, ID: id})
	}
	return out
}

func firstNonEmpty(r records.Record, keys ...string) string {
	for _, k := range keys {
		if v := r.GetString(k); v != "" {
			return v
		}
	}
	return ""
}

// GroupedOption is one selectable operation inside a type.
type GroupedOption struct {
	Label      string
	Value      string
	FullLabel  string
	ParentType string
}

// Groups is derived from the flat report list and never stored.
type Groups struct {
	types  []string
	byType map[string][]GroupedOption
}

// Group partitions reports by the part of their name before the first separator.
func Group(reports []Report) *Groups {
	g := &Groups{byType: make(map[string][]GroupedOption)}
	for _, r := range reports {
		if r.Name == "" || r.ID == "" {
			continue
		}
		parts := strings.Split(r.Name, Separator)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		typ, label := parts[0], parts[0]
		if len(parts) >= 2 {
			label = strings.Join(parts[1:], Separator)
		}

		if _, ok := g.byType[typ]; !ok {
			g.types = append(g.types, typ)
		}
		g.byType[typ] = append(g.byType[typ], GroupedOption{
			Label:      label,
			Value:      r.ID,
			FullLabel:  r.Name,
			ParentType: typ,
		})
	}
	return g
}

// Types returns the type labels in first-seen order.
func (g *Groups) Types() []string {
	return append([]string(nil), g.types...)
}

func (g *Groups) Has(typ string) bool {
	_, ok := g.byType[typ]
	return ok
}

// Options returns the operations of one type, or All for the empty type.
func (g *Groups) Options(typ string) []GroupedOption {
	if typ == "" {
		return g.All()
	}
	return append([]GroupedOption(nil), g.byType[typ]...)
}

// All flattens every group, keeping the first of any repeated (Value, Label) pair.
func (g *Groups) All() []GroupedOption {
	type key struct{ value, label string }
	seen := make(map[key]bool)
	var out []GroupedOption
	for _, t := range g.types {
		for _, o := range g.byType[t] {
			k := key{o.Value, o.Label}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, o)
		}
	}
	return out
}

// Find looks an operation up by type and label, falling back to the full name.
func (g *Groups) Find(typ, label string) (GroupedOption, bool) {
	for _, o := range g.Options(typ) {
		if o.Label == label || o.FullLabel == label {
			return o, true
		}
	}
	return GroupedOption{}, false
}

// Selection is the dependent type/operation pair.
type Selection struct {
	groups    *Groups
	typ       string
	operation *GroupedOption
}

func NewSelection(g *Groups) *Selection {
	if g == nil {
		g = Group(nil)
	}
	return &Selection{groups: g}
}

// SelectType narrows the operations and always clears the operation.
// The empty type selects every group.
func (s *Selection) SelectType(typ string) error {
	if typ != "" && !s.groups.Has(typ) {
		return fmt.Errorf("unknown report type %q", typ)
	}
	s.typ = typ
	s.operation = nil
	return nil
}

// SelectOperation accepts only a value that is among the current options.
func (s *Selection) SelectOperation(value string) error {
	for _, o := range s.Options() {
		if o.Value == value {
			o := o
			s.operation = &o
			return nil
		}
	}
	if s.typ == "" {
		return fmt.Errorf("unknown report %q", value)
	}
	return fmt.Errorf("report %q is not part of type %q", value, s.typ)
}

func (s *Selection) Options() []GroupedOption { return s.groups.Options(s.typ) }

func (s *Selection) Type() string { return s.typ }

func (s *Selection) Operation() (GroupedOption, bool) {
	if s.operation == nil {
		return GroupedOption{}, false
	}
	return *s.operation, true
}

func (s *Selection) Reset() {
	s.typ = ""
	s.operation = nil
}
