package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ============================================================================
// DATASET — Ordered, immutable collection of EmissionRecord
// ============================================================================
// Sorted by date ascending, ties in insertion order.
// Nothing outside this file touches the backing slice: accessors hand out
// copies and every transformation builds a new Dataset.
// ============================================================================

// Dataset is an ordered collection of emission records.
type Dataset struct {
	records []EmissionRecord
}

// NewDataset validates records, derives emission_intensity and month, and
// stable-sorts by date. The input slice is copied, never retained.
func NewDataset(records []EmissionRecord) (Dataset, error) {
	out := make([]EmissionRecord, len(records))
	for i, r := range records {
		if err := r.validate(); err != nil {
			return Dataset{}, fmt.Errorf("record %d: %w", i, err)
		}
		r.Date = r.Date.UTC()
		r.derive()
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return Dataset{records: out}, nil
}

// fromSorted wraps records that are already validated and ordered.
// Callers must pass a slice they own.
func fromSorted(records []EmissionRecord) Dataset {
	return Dataset{records: records}
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.records) }

// IsEmpty reports whether the dataset has no records.
func (d Dataset) IsEmpty() bool { return len(d.records) == 0 }

// At returns a copy of the i-th record.
func (d Dataset) At(i int) EmissionRecord { return d.records[i] }

// Records returns a copy of all records.
func (d Dataset) Records() []EmissionRecord {
	out := make([]EmissionRecord, len(d.records))
	copy(out, d.records)
	return out
}

// DateRange returns the earliest and latest record dates.
// Scans instead of reading the ends: detector outputs are severity-ordered.
func (d Dataset) DateRange() (time.Time, time.Time, bool) {
	if len(d.records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	lo, hi := d.records[0].Date, d.records[0].Date
	for _, r := range d.records[1:] {
		if r.Date.Before(lo) {
			lo = r.Date
		}
		if r.Date.After(hi) {
			hi = r.Date
		}
	}
	return lo, hi, true
}

// where returns the records matching keep, in order, as a new Dataset.
func (d Dataset) where(keep func(EmissionRecord) bool) Dataset {
	out := make([]EmissionRecord, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return fromSorted(out)
}

// column extracts one numeric field for every record.
func (d Dataset) column(get func(EmissionRecord) float64) []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = get(r)
	}
	return out
}

// sortedByCO2Desc returns records ordered by co2 descending, ties by dataset order.
func (d Dataset) sortedByCO2Desc() []EmissionRecord {
	out := d.Records()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CO2Tons > out[j].CO2Tons
	})
	return out
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	if d.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.records)
}

// UnmarshalJSON decodes a record array and re-validates it through NewDataset.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var records []EmissionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	ds, err := NewDataset(records)
	if err != nil {
		return err
	}
	*d = ds
	return nil
}
