package main

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/google/uuid"

	"github.com/TechnicalDree/iot-sensor-data-analyzer/internal/fastsensor"
	"github.com/TechnicalDree/iot-sensor-data-analyzer/internal/sensor"
)

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	nworkers := flag.Int("n", 1, "number of parse workers (1 = sequential scan)")
	chunkSize := flag.Int("chunksize", 256*1024, "size of the chunks to be processed by workers")
	chunkerChannelCap := flag.Int("channel-cap", 256, "capacity of the chunk channel")
	inputFile := flag.String("f", "-", "input CSV file ('-' for stdin)")
	site := flag.String("site", "", "only include rows from this site (e.g. site_1)")
	device := flag.String("device", "", "only include rows from this device (e.g. device_b_003)")
	metric := flag.String("metric", "", "only include rows for this metric (e.g. temperature)")
	startDate := flag.String("start-date", "", "inclusive lower time bound (\"YYYY-MM-DD HH:MM:SS\" or \"YYYY-MM-DD\")")
	endDate := flag.String("end-date", "", "inclusive upper time bound (\"YYYY-MM-DD HH:MM:SS\" or \"YYYY-MM-DD\")")
	var loglevel slog.Level
	flag.TextVar(&loglevel, "loglevel", slog.LevelInfo, "loglevel")

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loglevel,
	})).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	filter := sensor.Filter{
		Site:   *site,
		Device: *device,
		Metric: *metric,
	}
	if *startDate != "" {
		t, ok := sensor.ParseTime(*startDate)
		if !ok {
			log.Fatalf("invalid start-date: %q", *startDate)
		}
		filter.Start, filter.HasStart = t, true
	}
	if *endDate != "" {
		t, ok := sensor.ParseTime(*endDate)
		if !ok {
			log.Fatalf("invalid end-date: %q", *endDate)
		}
		filter.End, filter.HasEnd = t, true
	}
	if filter.HasStart && filter.HasEnd && filter.Start.After(filter.End) {
		slog.Warn("start-date is after end-date, no rows will match")
	}

	var input io.Reader
	if *inputFile == "-" {
		input = os.Stdin
	} else {
		r, closer, err := fastsensor.OpenMmap(*inputFile)
		if err != nil {
			// not a mappable file; fall back to a plain open
			f, ferr := os.Open(*inputFile)
			if ferr != nil {
				log.Fatal(ferr)
			}
			defer f.Close()
			input = f
		} else {
			defer closer.Close()
			input = r
		}
	}

	var (
		agg   *sensor.Aggregator
		stats sensor.ScanStats
		err   error
	)
	if *nworkers <= 1 {
		agg = sensor.NewAggregator()
		stats, err = sensor.Scan(input, filter, agg)
	} else {
		agg, stats, err = fastsensor.Analyze(input, filter, fastsensor.Options{
			Workers:    *nworkers,
			ChunkSize:  *chunkSize,
			ChannelCap: *chunkerChannelCap,
		})
	}
	if err != nil {
		log.Fatalf("error reading input: %s", err)
	}

	slog.Debug("scan done",
		"rows", stats.RowsRead,
		"filtered", stats.RowsFiltered,
		"dropped", stats.RowsDropped,
		"groups", agg.Len())

	if err := sensor.Render(os.Stdout, agg.Finalize()); err != nil {
		log.Fatal(err)
	}

	if stats.RowsDropped > 0 {
		slog.Info("rows without a usable value were dropped", "dropped", stats.RowsDropped)
	}
}
