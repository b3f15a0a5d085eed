package fastsensor

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"

	"github.com/TechnicalDree/iot-sensor-data-analyzer/internal/sensor"
)

// ChunkGetter is the part of Chunker a worker needs.
type ChunkGetter interface {
	NextChunk() *[]byte
	ReleaseChunk(*[]byte)
}

// ParseWorker drains chunks until the chunker is exhausted, parsing, filtering
// and aggregating rows into its own private shard. Shards are merged by the
// caller once every worker has returned.
func ParseWorker(chunker ChunkGetter, layout sensor.Layout, filter sensor.Filter) (*sensor.Aggregator, sensor.ScanStats) {
	agg := sensor.NewAggregator()
	var stats sensor.ScanStats

	for {
		chunkPtr := chunker.NextChunk()
		if chunkPtr == nil {
			break
		}

		r := csv.NewReader(bytes.NewReader(*chunkPtr))
		r.LazyQuotes = true
		r.FieldsPerRecord = -1

		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				// csv.Reader resyncs on the next row
				slog.Debug("dropping unreadable row", "err", err)
				stats.RowsRead++
				stats.RowsDropped++
				continue
			}

			stats.RowsRead++
			row, err := layout.RowFromRecord(record)
			if err != nil {
				stats.RowsDropped++
				continue
			}

			if !filter.Match(row) {
				stats.RowsFiltered++
				continue
			}
			if !row.ValueValid {
				stats.RowsDropped++
				continue
			}

			agg.Ingest(sensor.GroupKey{Device: row.Device, Site: row.Site, Metric: row.Metric}, row.Value)
		}

		chunker.ReleaseChunk(chunkPtr)
	}

	return agg, stats
}
