package models

import "time"

// ConfigurationRecord is a single named configuration entry with a localized description.
type ConfigurationRecord struct {
	ID        int64             `json:"id" db:"id"`
	Name      string            `json:"name" db:"name"`
	Value     string            `json:"value" db:"value"`
	DescrMap  map[string]string `json:"descrMap" db:"descr_map"` // locale code -> description
	CreatedAt time.Time         `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty" db:"updated_at"`
}

// Descr returns the description for the given locale code, or "" if there is none.
func (r ConfigurationRecord) Descr(locale string) string {
	return r.DescrMap[locale]
}

// Clone returns a deep copy of the record. DescrMap is copied so that callers
// can hold the clone without aliasing the original.
func (r ConfigurationRecord) Clone() ConfigurationRecord {
	c := r
	if r.DescrMap != nil {
		c.DescrMap = make(map[string]string, len(r.DescrMap))
		for k, v := range r.DescrMap {
			c.DescrMap[k] = v
		}
	}
	return c
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(records []ConfigurationRecord) []ConfigurationRecord {
	if records == nil {
		return nil
	}
	out := make([]ConfigurationRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
