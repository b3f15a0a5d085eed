package sensor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorIngest(t *testing.T) {
	a := NewAggregator()
	k1 := GroupKey{Device: "dev_1", Site: "site_1", Metric: "temp"}
	k2 := GroupKey{Device: "dev_2", Site: "site_1", Metric: "temp"}

	a.Ingest(k1, 10)
	a.Ingest(k2, 5)
	a.Ingest(k1, 20)

	require.Equal(t, 2, a.Len())

	s, ok := a.Stats(k1)
	require.True(t, ok)
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 20.0, s.Max)
	assert.Equal(t, 15.0, s.FinalMean())

	s, ok = a.Stats(k2)
	require.True(t, ok)
	assert.Equal(t, int64(1), s.Count)

	_, ok = a.Stats(GroupKey{Device: "nope", Site: "nope", Metric: "nope"})
	assert.False(t, ok)
}

func TestAggregatorDistinctSpellingsAreDistinctKeys(t *testing.T) {
	a := NewAggregator()
	a.Ingest(GroupKey{Device: "d", Site: "s", Metric: "temp"}, 1)
	a.Ingest(GroupKey{Device: "d", Site: "s", Metric: "temperature"}, 1)
	a.Ingest(GroupKey{Device: "d", Site: "s", Metric: "Temp"}, 1)

	assert.Equal(t, 3, a.Len())
}

func TestAggregatorFirstSeenOrder(t *testing.T) {
	a := NewAggregator()
	keys := []GroupKey{
		{Device: "z", Site: "s", Metric: "m"},
		{Device: "a", Site: "s", Metric: "m"},
		{Device: "m", Site: "s", Metric: "m"},
	}
	for _, k := range keys {
		a.Ingest(k, 1)
	}
	// re-ingesting must not change the order
	a.Ingest(keys[2], 2)
	a.Ingest(keys[0], 2)

	assert.Equal(t, keys, a.Keys())
}

func TestAggregatorBoundedMemory(t *testing.T) {
	// a long repeated-key stream must not grow state beyond the distinct keys
	a := NewAggregator()
	keys := make([]GroupKey, 7)
	for i := range keys {
		keys[i] = GroupKey{Device: fmt.Sprintf("dev_%d", i), Site: "site_1", Metric: "temp"}
	}

	for i := 0; i < 100_000; i++ {
		a.Ingest(keys[i%len(keys)], float64(i))
	}

	assert.Equal(t, len(keys), a.Len())
	s, ok := a.Stats(keys[0])
	require.True(t, ok)
	assert.Equal(t, int64(100_000/len(keys)+1), s.Count)
}

func TestAggregatorSizeValidation(t *testing.T) {
	_, err := NewAggregatorSize(1000)
	assert.Error(t, err)
	_, err = NewAggregatorSize(0)
	assert.Error(t, err)
	_, err = NewAggregatorSize(1024)
	assert.NoError(t, err)
}

func TestGroupKeyLess(t *testing.T) {
	tcs := []struct {
		a, b     GroupKey
		expected bool
	}{
		{GroupKey{"a", "s", "m"}, GroupKey{"b", "s", "m"}, true},
		{GroupKey{"b", "s", "m"}, GroupKey{"a", "s", "m"}, false},
		{GroupKey{"a", "s1", "m"}, GroupKey{"a", "s2", "m"}, true},
		{GroupKey{"a", "s", "m1"}, GroupKey{"a", "s", "m2"}, true},
		{GroupKey{"a", "s", "m"}, GroupKey{"a", "s", "m"}, false},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.expected, tc.a.Less(tc.b), "%v < %v", tc.a, tc.b)
	}
}

func BenchmarkAggregatorIngest(b *testing.B) {
	b.ReportAllocs()
	keys := make([]GroupKey, 64)
	for i := range keys {
		keys[i] = GroupKey{Device: fmt.Sprintf("dev_%d", i), Site: "site_1", Metric: "temp"}
	}

	a := NewAggregator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Ingest(keys[i%len(keys)], float64(i))
	}
}
