package sensor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	agg := NewAggregator()
	_, err := Scan(strings.NewReader(miniCSV), Filter{}, agg)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, Render(&b, agg.Finalize()))
	out := b.String()

	assert.Contains(t, out, "Total device+site+metric combinations: 2")
	assert.Contains(t, out, "TOP 10 BY AVERAGE VALUE")
	assert.Contains(t, out, "TOP 10 BY STANDARD DEVIATION (HIGHEST VARIABILITY)")
	assert.Contains(t, out, "dev_1")
	assert.Contains(t, out, "20.00") // dev_1 temp mean
	assert.Contains(t, out, "52.50") // dev_2 humidity mean
	assert.Contains(t, out, "8.16")  // dev_1 temp stddev
}

func TestRenderEmptyReport(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Render(&b, NewAggregator().Finalize()))
	assert.Contains(t, b.String(), "Total device+site+metric combinations: 0")
}
