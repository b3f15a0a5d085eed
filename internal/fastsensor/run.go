package fastsensor

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/TechnicalDree/iot-sensor-data-analyzer/internal/sensor"
)

// Options tunes the parallel run. Zero values get sane defaults.
type Options struct {
	Workers    int
	ChunkSize  int
	ChannelCap int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 256 * 1024
	}
	if o.ChannelCap <= 0 {
		o.ChannelCap = 256
	}
	return o
}

// Analyze runs the sharded ingestion pipeline over input: one chunker
// goroutine, opts.Workers parse workers with private shard aggregators, then
// a sequential merge. The merged aggregator carries groups in lexicographic
// key order so parallel output stays reproducible regardless of which worker
// saw which chunk first.
func Analyze(input io.Reader, filter sensor.Filter, opts Options) (*sensor.Aggregator, sensor.ScanStats, error) {
	opts = opts.withDefaults()

	br := bufio.NewReaderSize(input, 64*1024)
	layout, err := readHeader(br)
	if err == io.EOF {
		// empty input, empty report
		return sensor.NewAggregator(), sensor.ScanStats{}, nil
	}
	if err != nil {
		return nil, sensor.ScanStats{}, err
	}

	chunker := NewChunker(br, opts.ChannelCap, opts.ChunkSize)

	shards := make([]*sensor.Aggregator, opts.Workers)
	shardStats := make([]sensor.ScanStats, opts.Workers)

	var chunkerErr error
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		chunkerErr = chunker.Run()
		slog.Debug("chunker done")
	}()

	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			shards[i], shardStats[i] = ParseWorker(chunker, layout, filter)
			slog.Debug("worker done", "id", i)
		}()
	}

	wg.Wait()
	if chunkerErr != nil {
		return nil, sensor.ScanStats{}, fmt.Errorf("chunker failed: %w", chunkerErr)
	}

	var stats sensor.ScanStats
	for _, s := range shardStats {
		stats.RowsRead += s.RowsRead
		stats.RowsFiltered += s.RowsFiltered
		stats.RowsDropped += s.RowsDropped
	}

	return MergeShards(shards), stats, nil
}

// MergeShards folds per-worker aggregators into one, visiting the union of
// keys in lexicographic order and combining shard statistics with the
// order-independent recurrence. The result matches a sequential run's mean
// and count exactly and its variance up to float rounding.
func MergeShards(shards []*sensor.Aggregator) *sensor.Aggregator {
	seen := make(map[sensor.GroupKey]struct{}, 256)
	keys := make([]sensor.GroupKey, 0, 256)
	for _, shard := range shards {
		for _, k := range shard.Keys() {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	merged := sensor.NewAggregator()
	for _, k := range keys {
		for _, shard := range shards {
			if s, ok := shard.Stats(k); ok {
				merged.Absorb(k, s)
			}
		}
	}
	return merged
}

// readHeader consumes the header row from br and resolves the column layout,
// leaving br positioned at the first data row for the chunker. A zero-byte
// input comes back as io.EOF so the caller can produce an empty report.
func readHeader(br *bufio.Reader) (sensor.Layout, error) {
	// skip blank leading lines the way csv.Reader does
	line := ""
	for strings.TrimSpace(line) == "" {
		var err error
		line, err = br.ReadString('\n')
		if err == io.EOF {
			if strings.TrimSpace(line) == "" {
				return sensor.Layout{}, io.EOF
			}
			break
		}
		if err != nil {
			return sensor.Layout{}, fmt.Errorf("failed to read header: %w", err)
		}
	}

	hr := csv.NewReader(strings.NewReader(line))
	hr.LazyQuotes = true
	header, err := hr.Read()
	if err != nil {
		return sensor.Layout{}, fmt.Errorf("failed to parse header: %w", err)
	}
	return sensor.ResolveLayout(header)
}
