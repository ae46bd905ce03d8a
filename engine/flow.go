package engine

import (
	"sort"
)

// ============================================================================
// FLOW DECOMPOSITION — fuel → zone (→ total) weighted graph
// ============================================================================
// Output is a node list plus parallel Sources/Targets/Values arrays, the shape
// sankey renderers take. Only positive-weight edges are emitted, and a node
// appears only if an edge touches it.
// ============================================================================

// TotalNode labels the optional terminal layer.
const TotalNode = "Total Emissions"

// FlowGraph is a directed weighted graph. Sources[i] → Targets[i] carries
// Values[i]; indices refer to Nodes.
type FlowGraph struct {
	Nodes   []string  `json:"nodes"`
	Sources []int     `json:"sources"`
	Targets []int     `json:"targets"`
	Values  []float64 `json:"values"`
}

// IsEmpty reports a graph with nothing to draw.
func (g FlowGraph) IsEmpty() bool { return len(g.Values) == 0 }

// ZoneNode is the node label for a zone.
func ZoneNode(z Zone) string { return string(z) + " Emissions" }

// FlowDecomposition builds fuel → zone edges weighted by summed co2. With
// WithTotalNode a zone → "Total Emissions" layer is added.
func FlowDecomposition(ds Dataset, opts ...Option) FlowGraph {
	cfg := applyOptions(opts)
	empty := FlowGraph{Nodes: []string{}, Sources: []int{}, Targets: []int{}, Values: []float64{}}

	type edge struct {
		fuel   string
		zone   Zone
		weight float64
	}
	var edges []edge
	fuels := map[string]bool{}
	zoneIn := map[Zone]float64{}

	groups := GroupAndAggregate(ds.View(), []string{FieldFuelType, FieldZone}, FieldCO2Tons, "sum", "label_asc")
	for _, g := range groups {
		for _, sub := range g.SubGroups {
			if sub.Value <= 0 {
				continue
			}
			z := Zone(sub.Key)
			edges = append(edges, edge{fuel: g.Key, zone: z, weight: sub.Value})
			fuels[g.Key] = true
			zoneIn[z] += sub.Value
		}
	}
	if len(edges) == 0 {
		return empty
	}

	graph := empty
	index := map[string]int{}
	addNode := func(label string) {
		index[label] = len(graph.Nodes)
		graph.Nodes = append(graph.Nodes, label)
	}

	fuelNodes := make([]string, 0, len(fuels))
	for f := range fuels {
		fuelNodes = append(fuelNodes, f)
	}
	sort.Strings(fuelNodes)
	for _, f := range fuelNodes {
		addNode(f)
	}
	for _, z := range Zones {
		if zoneIn[z] > 0 {
			addNode(ZoneNode(z))
		}
	}

	link := func(from, to string, w float64) {
		graph.Sources = append(graph.Sources, index[from])
		graph.Targets = append(graph.Targets, index[to])
		graph.Values = append(graph.Values, Round(w, 2))
	}
	for _, e := range edges {
		link(e.fuel, ZoneNode(e.zone), e.weight)
	}

	if cfg.TotalNode {
		addNode(TotalNode)
		for _, z := range Zones {
			if zoneIn[z] > 0 {
				link(ZoneNode(z), TotalNode, zoneIn[z])
			}
		}
	}
	return graph
}
