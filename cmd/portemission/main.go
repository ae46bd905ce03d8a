package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spektr-org/portemission/api"
	"github.com/spektr-org/portemission/config"
	"github.com/spektr-org/portemission/engine"
	"github.com/spektr-org/portemission/helpers"
	"github.com/spektr-org/portemission/snapshot"
)

// ============================================================================
// PORTEMISSION CLI — Port emission views from the terminal
// ============================================================================

const version = "0.3.0"

// stringList collects a repeatable flag; commas also separate values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "Path to YAML config file")
	rows := flag.Int("rows", 0, "Rows to synthesize (default from config: 500)")
	seed := flag.Uint64("seed", 0, "Synthesizer seed (default from config: 42)")
	anchor := flag.String("anchor", "", "Last day of the synthetic window, YYYY-MM-DD (default today)")
	input := flag.String("input", "", "Load records from a .csv or .parquet file instead of synthesizing")
	allow := flag.String("allow", "", "Comma-separated IMO allow-list")
	view := flag.String("view", engine.ViewKPIs, "View to compute: "+strings.Join(engine.Views, ", "))
	start := flag.String("start", "", "First day, YYYY-MM-DD")
	end := flag.String("end", "", "Last day, YYYY-MM-DD")
	var zones, vesselTypes, fuelTypes stringList
	flag.Var(&zones, "zone", "Zone to include (repeatable): ECA, Non-ECA")
	flag.Var(&vesselTypes, "vessel-type", "Vessel type to include (repeatable)")
	flag.Var(&fuelTypes, "fuel-type", "Fuel type to include (repeatable): HFO, MGO, LNG, Hybrid")
	threshold := flag.Float64("threshold", 0, "Alert threshold in tons CO2, 5-30 (default 15)")
	sigma := flag.Float64("sigma", 0, "Anomaly multiplier (default 1.5)")
	top := flag.Int("top", 0, "Top emitters in the summary (default 5)")
	format := flag.String("format", "json", "Output format: json, pretty, text, csv, xlsx")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	serve := flag.Bool("serve", false, "Serve the HTTP API instead of printing one view")
	addr := flag.String("addr", "", "HTTP listen address (default :8080)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `portemission — port emission analytics

Usage:
  portemission --view kpis --format pretty
  portemission --rows 2000 --seed 7 --anchor 2025-03-30 --view summary --format text
  portemission --input fleet.csv --view alerts --threshold 18 --format csv --out alerts.csv
  portemission --view records --zone ECA --format xlsx --out eca.xlsx
  portemission --serve --addr :8080

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  PORTEMISSION_ROWS, PORTEMISSION_SEED, PORTEMISSION_ANCHOR, PORTEMISSION_INPUT,
  PORTEMISSION_ALLOW, PORTEMISSION_THRESHOLD, PORTEMISSION_SIGMA, PORTEMISSION_TOP_N,
  PORTEMISSION_ADDR, PORTEMISSION_REDIS_ADDR, PORTEMISSION_REDIS_PASSWORD, PORTEMISSION_REDIS_DB

Formats:
  json      Full JSON result (default)
  pretty    Pretty-printed JSON
  text      Reply line only (the executive brief for --view summary)
  csv       Chart/table data as CSV
  xlsx      Filtered records as a workbook (requires --out)
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("portemission %s\n", version)
		os.Exit(0)
	}

	// ── Configuration ─────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rows":
			cfg.Data.Rows = *rows
		case "seed":
			cfg.Data.Seed = *seed
		case "anchor":
			cfg.Data.Anchor = *anchor
		case "input":
			cfg.Data.Input = *input
		case "allow":
			list, perr := helpers.ParseAllowList(*allow)
			if perr != nil {
				fatalf("%v", perr)
			}
			cfg.Data.Allow = list.IMOs()
		case "threshold":
			cfg.Engine.Threshold = *threshold
		case "sigma":
			cfg.Engine.Sigma = *sigma
		case "top":
			cfg.Engine.TopN = *top
		case "addr":
			cfg.Server.Addr = *addr
		}
	})
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Data source ───────────────────────────────────────────────────────
	var metrics *api.Metrics
	if *serve {
		metrics = api.NewMetrics()
	}
	source, err := buildSource(ctx, cfg, metrics)
	if err != nil {
		fatalf("%v", err)
	}

	// ── Serve mode ────────────────────────────────────────────────────────
	if *serve {
		srv := api.NewServer(source, metrics, cfg.EngineOptions()...)
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
			fatalf("Server failed: %v", err)
		}
		return
	}

	// ── View mode ─────────────────────────────────────────────────────────
	ds, err := source(ctx)
	if err != nil {
		fatalf("Failed to load data: %v", err)
	}
	filters, err := api.FilterParams{
		Start:       *start,
		End:         *end,
		Zones:       zones,
		VesselTypes: vesselTypes,
		FuelTypes:   fuelTypes,
	}.Build(ds)
	if err != nil {
		fatalf("Invalid filters: %v", err)
	}

	writer := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	if *format == "xlsx" {
		if *outFile == "" {
			fatalf("--format xlsx requires --out")
		}
		slice := engine.Apply(ds, filters.Resolve(engine.DefaultFilters(ds)))
		if err := helpers.WriteXLSX(writer, slice); err != nil {
			fatalf("Failed to write workbook: %v", err)
		}
		log.Printf("📄 %d records written to %s", slice.Len(), *outFile)
		return
	}

	result, err := engine.Run(engine.Query{View: *view, Filters: filters}, ds, cfg.EngineOptions()...)
	if err != nil {
		fatalf("View failed: %v", err)
	}
	if err := render(writer, result, *format); err != nil {
		fatalf("Failed to write output: %v", err)
	}
	if *outFile != "" {
		log.Printf("📄 %s output written to %s", *format, *outFile)
	}
}

// buildSource returns a file-backed source when an input is configured and a
// snapshot loader otherwise.
func buildSource(ctx context.Context, cfg config.Config, metrics *api.Metrics) (api.Source, error) {
	allow := helpers.NewAllowList(cfg.Data.Allow...)

	if cfg.Data.Input != "" {
		ds, err := readInput(cfg.Data.Input, allow)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.Data.Input, err)
		}
		log.Printf("📊 Loaded %d records from %s", ds.Len(), cfg.Data.Input)
		return func(context.Context) (engine.Dataset, error) { return ds, nil }, nil
	}

	anchor, err := cfg.AnchorTime()
	if err != nil {
		return nil, err
	}

	var observer snapshot.Observer
	var opts []snapshot.LoaderOption
	if metrics != nil {
		observer = metrics
		opts = append(opts, snapshot.WithGenerateHook(metrics.ObserveGenerate))
	}
	if cfg.Redis.Addr != "" {
		client, err := snapshot.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, using in-process cache only: %v", err)
		} else {
			opts = append(opts, snapshot.WithStore(snapshot.NewRedisStore(client, cfg.Redis.TTL)))
			log.Printf("🗄️  Snapshot store: redis %s", cfg.Redis.Addr)
		}
	}
	loader := snapshot.NewLoader(snapshot.NewCache[engine.Dataset](cfg.Data.CacheTTL, observer), opts...)

	params := snapshot.Params{
		Rows:    cfg.Data.Rows,
		Seed:    cfg.Data.Seed,
		Anchor:  anchor,
		Profile: cfg.Data.Profile,
		Allow:   allow.IMOs(),
	}
	return func(ctx context.Context) (engine.Dataset, error) {
		ds, _, err := loader.Load(ctx, params)
		return ds, err
	}, nil
}

// readInput loads a .csv or .parquet file.
func readInput(path string, allow helpers.AllowList) (engine.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return engine.Dataset{}, err
		}
		return helpers.ParseCSV(data, allow)
	case ".parquet":
		f, err := os.Open(path)
		if err != nil {
			return engine.Dataset{}, err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return engine.Dataset{}, err
		}
		return helpers.ReadParquet(f, info.Size(), allow)
	}
	return engine.Dataset{}, fmt.Errorf("%w: unsupported input %q (want .csv or .parquet)", engine.ErrInvalidArgument, path)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
