package engine

import (
	"strconv"
	"time"
)

// ============================================================================
// RECORD VIEW — Zero-Copy Read Access for the Aggregation Pipeline
// ============================================================================
// Grouping reads records through this interface instead of the Dataset slice.
//
// Implementations:
//   DomainView[T]  — reads typed structs via accessor functions
//   SubView        — grouped subset (indices into parent)
//   ConcatView     — virtual concatenation of two views
//   RelabelView    — overrides one dimension on read (benchmark peers)
//
// Views are read-only. Nothing here can write back into a Dataset.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The pipeline calls Dimension/Measure in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// Virtual dimension used by the comparative benchmark.
const DimensionPort = "port"

// emissionAdapter registers the record schema once.
var emissionAdapter = NewDomainAdapter[EmissionRecord]().
	Dimension(FieldZone, func(r EmissionRecord) string { return string(r.Zone) }).
	Dimension(FieldFuelType, func(r EmissionRecord) string { return string(r.FuelType) }).
	Dimension(FieldVesselType, func(r EmissionRecord) string { return r.VesselType }).
	Dimension(FieldVesselName, func(r EmissionRecord) string { return r.VesselName }).
	Dimension(FieldIMONumber, func(r EmissionRecord) string { return strconv.Itoa(r.IMONumber) }).
	Dimension(FieldDate, func(r EmissionRecord) string { return Day(r.Date).Format(time.DateOnly) }).
	Dimension(FieldMonth, func(r EmissionRecord) string { return r.Month.Format("2006-01") }).
	Measure(FieldCO2Tons, func(r EmissionRecord) float64 { return r.CO2Tons }).
	Measure(FieldSOxTons, func(r EmissionRecord) float64 { return r.SOxTons }).
	Measure(FieldNOxTons, func(r EmissionRecord) float64 { return r.NOxTons }).
	Measure(FieldSpeedKnots, func(r EmissionRecord) float64 { return r.SpeedKnots }).
	Measure(FieldDwellTimeHr, func(r EmissionRecord) float64 { return r.DwellTimeHr }).
	Measure(FieldComplianceFlag, func(r EmissionRecord) float64 {
		if r.ComplianceFlag {
			return 1
		}
		return 0
	})

// View binds a dataset to the emission schema. The view holds the dataset's
// backing slice read-only; datasets are never mutated, so this is safe.
func (d Dataset) View() RecordView {
	return emissionAdapter.Bind(d.records)
}

// ============================================================================
// SUB VIEW — grouped subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// CONCAT VIEW — virtual concatenation of two views
// ============================================================================

// ConcatView logically concatenates two RecordViews.
type ConcatView struct {
	a, b RecordView
}

func newConcatView(a, b RecordView) RecordView {
	return &ConcatView{a: a, b: b}
}

func (v *ConcatView) Len() int { return v.a.Len() + v.b.Len() }

func (v *ConcatView) Dimension(i int, key string) string {
	if i < v.a.Len() {
		return v.a.Dimension(i, key)
	}
	return v.b.Dimension(i-v.a.Len(), key)
}

func (v *ConcatView) Measure(i int, key string) float64 {
	if i < v.a.Len() {
		return v.a.Measure(i, key)
	}
	return v.b.Measure(i-v.a.Len(), key)
}

func (v *ConcatView) DimensionKeys() []string { return v.a.DimensionKeys() }
func (v *ConcatView) MeasureKeys() []string   { return v.a.MeasureKeys() }

// ============================================================================
// RELABEL VIEW — on-read dimension override (zero-copy)
// ============================================================================

// RelabelView wraps a RecordView and answers one dimension from a function of
// the record instead of the parent. Used to derive benchmark peers.
type RelabelView struct {
	parent    RecordView
	dimension string
	label     func(parent RecordView, i int) string
}

func newRelabelView(parent RecordView, dimension string, label func(RecordView, int) string) RecordView {
	return &RelabelView{parent: parent, dimension: dimension, label: label}
}

func (v *RelabelView) Len() int { return v.parent.Len() }

func (v *RelabelView) Dimension(i int, key string) string {
	if key == v.dimension {
		return v.label(v.parent, i)
	}
	return v.parent.Dimension(i, key)
}

func (v *RelabelView) Measure(i int, key string) float64 { return v.parent.Measure(i, key) }

func (v *RelabelView) DimensionKeys() []string {
	keys := v.parent.DimensionKeys()
	for _, k := range keys {
		if k == v.dimension {
			return keys
		}
	}
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, v.dimension)
}

func (v *RelabelView) MeasureKeys() []string { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }
