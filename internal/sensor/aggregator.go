package sensor

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// GroupKey identifies one aggregation group. Fields are compared by exact
// text equality: "temp" and "temperature" are distinct groups on purpose.
type GroupKey struct {
	Device string
	Site   string
	Metric string
}

// Less orders keys by Device, then Site, then Metric. This is the tie-break
// order for the ranked views and the table order after a parallel merge.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Device != o.Device {
		return k.Device < o.Device
	}
	if k.Site != o.Site {
		return k.Site < o.Site
	}
	return k.Metric < o.Metric
}

func (k GroupKey) String() string {
	return k.Device + "/" + k.Site + "/" + k.Metric
}

func (k GroupKey) hash() uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(k.Device)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Site)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Metric)
	return d.Sum64()
}

type groupEntry struct {
	key   GroupKey
	stats GroupStats
	next  *groupEntry
}

// Aggregator owns all per-group running statistics for one run. It is a
// chained hash table indexed by xxhash of the group key, and it remembers
// the order keys were first seen so the full report table is stable.
//
// Memory is proportional to the number of distinct keys, never to the
// number of ingested rows.
//
// Not safe for concurrent use; parallel ingestion gives each worker its own
// Aggregator and merges afterwards.
type Aggregator struct {
	buckets   []*groupEntry
	nbuckets  uint64
	firstSeen []GroupKey
}

const defaultBuckets = 1024

// NewAggregator returns an empty aggregator with the default table size.
func NewAggregator() *Aggregator {
	a, err := NewAggregatorSize(defaultBuckets)
	if err != nil {
		panic(err) // defaultBuckets is a power of 2
	}
	return a
}

// NewAggregatorSize returns an empty aggregator with nbuckets chains.
// nbuckets must be a power of 2 so the hash can be masked instead of modded.
func NewAggregatorSize(nbuckets uint64) (*Aggregator, error) {
	// http://www.graphics.stanford.edu/~seander/bithacks.html#DetermineIfPowerOf2
	if nbuckets == 0 || (nbuckets&(nbuckets-1)) != 0 {
		return nil, fmt.Errorf("nbuckets must be a power of 2: %d", nbuckets)
	}
	return &Aggregator{
		buckets:   make([]*groupEntry, nbuckets),
		nbuckets:  nbuckets,
		firstSeen: make([]GroupKey, 0, 64),
	}, nil
}

func (a *Aggregator) getOrCreate(key GroupKey) *GroupStats {
	h := key.hash() & (a.nbuckets - 1)

	for e := a.buckets[h]; e != nil; e = e.next {
		if e.key == key {
			return &e.stats
		}
	}

	newEntry := &groupEntry{key: key}
	newEntry.next = a.buckets[h]
	a.buckets[h] = newEntry
	a.firstSeen = append(a.firstSeen, key)
	return &newEntry.stats
}

// Ingest folds one qualifying value into the group for key, creating the
// group's state on first sight. O(1) per call.
func (a *Aggregator) Ingest(key GroupKey, v float64) {
	a.getOrCreate(key).Observe(v)
}

// Absorb folds a complete GroupStats into the group for key, using the
// order-independent combination recurrence. Used by the shard merge.
func (a *Aggregator) Absorb(key GroupKey, s GroupStats) {
	a.getOrCreate(key).Combine(s)
}

// Len is the number of distinct groups seen so far.
func (a *Aggregator) Len() int {
	return len(a.firstSeen)
}

// Keys returns the group keys in first-seen order. The slice is owned by
// the aggregator; callers must not mutate it.
func (a *Aggregator) Keys() []GroupKey {
	return a.firstSeen
}

// Stats returns a copy of the running statistics for key.
func (a *Aggregator) Stats(key GroupKey) (GroupStats, bool) {
	h := key.hash() & (a.nbuckets - 1)
	for e := a.buckets[h]; e != nil; e = e.next {
		if e.key == key {
			return e.stats, true
		}
	}
	return GroupStats{}, false
}
