// Package portemission provides a deterministic port-emission analytics engine.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/portemission/engine"
//	    "github.com/spektr-org/portemission/synth"
//	)
//
//	ds, err := synth.Generate(500, 42)
//	filters := engine.DefaultFilters(ds)
//	slice := engine.Apply(ds, filters)
//	kpis := engine.ComputeKPIs(slice)
//
// Or dispatch a named view and get render-ready chart/table/text output:
//
//	result, err := engine.Run(engine.Query{View: engine.ViewFuelMix, Filters: filters}, ds)
//
// Packages:
//
//	engine    records, filters, aggregations, detectors, flow graph, summaries, view dispatch
//	synth     seeded synthetic fleet dataset
//	schema    canonical field metadata and header normalization
//	helpers   CSV/parquet ingestion with an IMO allow-list; CSV/XLSX/parquet export
//	snapshot  TTL cache, redis store and loader for synthesized datasets
//	config    YAML + environment configuration
//	api       gin HTTP surface with prometheus metrics
//
// The engine never performs I/O. Rendering and authentication belong to the caller.
// The portemission command under cmd/ wires everything for terminal and server use.
package portemission
