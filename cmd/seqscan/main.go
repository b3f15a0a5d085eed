// seqscan is the minimal sequential analyzer: no filters, no workers, just
// one pass over a file. Handy for sanity-checking the parallel pipeline's
// output against the simplest possible implementation.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/TechnicalDree/iot-sensor-data-analyzer/internal/sensor"
)

func main() {
	inputFile := flag.String("f", "-", "input CSV file ('-' for stdin)")
	flag.Parse()

	input := os.Stdin
	if *inputFile != "-" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		input = f
	}

	agg := sensor.NewAggregator()
	if _, err := sensor.Scan(input, sensor.Filter{}, agg); err != nil {
		log.Fatalf("error reading input: %s", err)
	}

	if err := sensor.Render(os.Stdout, agg.Finalize()); err != nil {
		log.Fatal(err)
	}
}
