package sensor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ScanStats counts what happened to the rows of one run. Dropped rows are a
// diagnostic, never an error.
//
// RowsRead counts csv records, which under pathological quoting may span
// several physical lines; a record the csv reader rejects mid-stream counts
// as one read and one dropped row.
type ScanStats struct {
	RowsRead     int64 // data rows read, header excluded
	RowsFiltered int64 // rows rejected by the filter
	RowsDropped  int64 // rows with an empty or non-numeric value
}

// Scan reads the whole CSV input once, front to back, feeding every row that
// passes the filter and carries a numeric value into agg. The input must
// start with a header row naming the six required columns.
//
// Only source problems are fatal: open/read failures and an unusable
// header. A zero-byte input is valid and leaves agg empty. Bad timestamps
// and non-numeric values are counted in ScanStats and skipped.
func Scan(input io.Reader, filter Filter, agg *Aggregator) (ScanStats, error) {
	r := csv.NewReader(input)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		// empty input, empty report
		return ScanStats{}, nil
	}
	if err != nil {
		return ScanStats{}, fmt.Errorf("failed to read header: %w", err)
	}
	layout, err := ResolveLayout(header)
	if err != nil {
		return ScanStats{}, err
	}

	var stats ScanStats
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// csv.Reader resyncs on the next row
				slog.Debug("dropping unreadable row", "err", err)
				stats.RowsRead++
				stats.RowsDropped++
				continue
			}
			return stats, fmt.Errorf("failed to read row: %w", err)
		}

		stats.RowsRead++
		row, err := layout.RowFromRecord(record)
		if err != nil {
			// Short record. Treat like any other malformed row.
			slog.Debug("dropping malformed row", "row", stats.RowsRead, "err", err)
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

		agg.Ingest(GroupKey{Device: row.Device, Site: row.Site, Metric: row.Metric}, row.Value)
	}

	return stats, nil
}
