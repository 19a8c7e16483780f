// Package preferences persists per-owner table column and sort choices.
package preferences

import "fmt"

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type TablePreferences struct {
	VisibleColumns []string      `json:"visibleColumns"`
	SortField      string        `json:"sortField"`
	SortDirection  SortDirection `json:"sortDirection"`
}

func (p TablePreferences) clone() TablePreferences {
	if p.VisibleColumns != nil {
		p.VisibleColumns = append([]string(nil), p.VisibleColumns...)
	}
	return p
}

// UpdateVisibleColumns returns requested with required prepended when it is
// missing. A list that already names required is returned as given.
func UpdateVisibleColumns(requested []string, required string) []string {
	for _, id := range requested {
		if id == required {
			return requested
		}
	}
	out := make([]string, 0, len(requested)+1)
	out = append(out, required)
	return append(out, requested...)
}

// ToggleSort flips the direction when field is already the sort field and
// otherwise sorts ascending by field.
func ToggleSort(prefs TablePreferences, field string) TablePreferences {
	next := prefs.clone()
	if prefs.SortField == field {
		if prefs.SortDirection == SortAsc {
			next.SortDirection = SortDesc
		} else {
			next.SortDirection = SortAsc
		}
		return next
	}
	next.SortField = field
	next.SortDirection = SortAsc
	return next
}

// Normalize checks prefs against the table's columns and enforces the
// required column. Errors are keyed by the JSON field they refer to.
func (t TableConfig) Normalize(prefs TablePreferences) (TablePreferences, map[string]string) {
	fields := map[string]string{}

	for _, id := range prefs.VisibleColumns {
		if _, ok := t.column(id); !ok {
			fields["visibleColumns"] = fmt.Sprintf("unknown column %q", id)
			break
		}
	}

	if prefs.SortField != "" {
		col, ok := t.column(prefs.SortField)
		if !ok || !col.Sortable {
			fields["sortField"] = fmt.Sprintf("column %q is not sortable", prefs.SortField)
		}
	}

	switch prefs.SortDirection {
	case SortAsc, SortDesc:
	case "":
		prefs.SortDirection = SortAsc
	default:
		fields["sortDirection"] = "must be one of: asc desc"
	}

	if len(fields) > 0 {
		return prefs, fields
	}

	prefs.VisibleColumns = UpdateVisibleColumns(prefs.VisibleColumns, t.RequiredColumn())
	return prefs, nil
}
