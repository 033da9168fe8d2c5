package console

import "config-console/shared/models"

// Draft is the dialog's private copy of the selected record. NewValue is nil
// until the operator types something.
type Draft struct {
	Record   models.ConfigurationRecord
	NewValue *string
}

// Modified reports whether the draft differs from the record it was opened from.
func (d *Draft) Modified() bool {
	return d.NewValue != nil && *d.NewValue != d.Record.Value
}

// Value is what the dialog input shows.
func (d *Draft) Value() string {
	if d.NewValue != nil {
		return *d.NewValue
	}
	return d.Record.Value
}

func (d *Draft) clone() *Draft {
	c := &Draft{Record: d.Record.Clone()}
	if d.NewValue != nil {
		v := *d.NewValue
		c.NewValue = &v
	}
	return c
}

// State is the page state. Selected is non-nil exactly when DialogVisible.
type State struct {
	List          []models.ConfigurationRecord
	Loading       bool
	DialogVisible bool
	Selected      *Draft
}

// Row is one rendered table row.
type Row struct {
	ID    int64
	Name  string
	Value string
	Descr string
}

// Rows projects records for the given locale code in list order.
func Rows(records []models.ConfigurationRecord, locale string) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{ID: r.ID, Name: r.Name, Value: r.Value, Descr: r.Descr(locale)})
	}
	return rows
}
