package dataframe

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	xxhash "github.com/cespare/xxhash/v2"
)

// Constants for the row-key hash map.
const (
	hashMapLoadFactor     = 0.75 // load factor before resize
	hashMapGrowthFactor   = 2    // growth factor for hash map resize
	hashMapCapacityFactor = 1.3  // capacity factor for initial hash map size
)

// rowIndex maps encoded row keys to the rows that carry them, preserving the
// order in which distinct keys were first inserted.
type rowIndex struct {
	buckets  [][]hashEntry
	capacity int
	keys     []string // distinct keys in first-insertion order
}

type hashEntry struct {
	key  string
	id   int   // position in keys
	rows []int // rows carrying key, in insertion order
}

// newRowIndex creates an index sized for roughly estimatedSize keys.
func newRowIndex(estimatedSize int) *rowIndex {
	capacity := nextPowerOfTwo(int(float64(estimatedSize) * hashMapCapacityFactor))
	return &rowIndex{
		buckets:  make([][]hashEntry, capacity),
		capacity: capacity,
	}
}

func (ri *rowIndex) bucket(key string) int {
	//nolint:gosec // capacity is always a positive power of two
	return int(xxhash.Sum64String(key) & uint64(ri.capacity-1))
}

// Put records row under key and returns the key's group id.
func (ri *rowIndex) Put(key string, row int) int {
	b := ri.bucket(key)
	for i := range ri.buckets[b] {
		if ri.buckets[b][i].key == key {
			ri.buckets[b][i].rows = append(ri.buckets[b][i].rows, row)
			return ri.buckets[b][i].id
		}
	}

	id := len(ri.keys)
	ri.keys = append(ri.keys, key)
	ri.buckets[b] = append(ri.buckets[b], hashEntry{key: key, id: id, rows: []int{row}})

	if float64(len(ri.keys)) > float64(ri.capacity)*hashMapLoadFactor {
		ri.resize()
	}
	return id
}

// Get returns the rows recorded under key.
func (ri *rowIndex) Get(key string) ([]int, bool) {
	for _, entry := range ri.buckets[ri.bucket(key)] {
		if entry.key == key {
			return entry.rows, true
		}
	}
	return nil, false
}

// Groups returns the rows of every distinct key in first-insertion order.
func (ri *rowIndex) Groups() [][]int {
	groups := make([][]int, len(ri.keys))
	for _, bucket := range ri.buckets {
		for _, entry := range bucket {
			groups[entry.id] = entry.rows
		}
	}
	return groups
}

// Len returns the number of distinct keys.
func (ri *rowIndex) Len() int {
	return len(ri.keys)
}

// resize doubles the capacity and rehashes all entries.
func (ri *rowIndex) resize() {
	old := ri.buckets
	ri.capacity *= hashMapGrowthFactor
	ri.buckets = make([][]hashEntry, ri.capacity)
	for _, bucket := range old {
		for _, entry := range bucket {
			b := ri.bucket(entry.key)
			ri.buckets[b] = append(ri.buckets[b], entry)
		}
	}
}

// nextPowerOfTwo returns the next power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// encodeRowKey builds a composite key for row i over arrs. Integer widths and
// float widths encode alike; every value is tagged by kind so a string "1"
// never equals the integer 1, and nulls only equal nulls.
func encodeRowKey(arrs []arrow.Array, i int) string {
	var b strings.Builder
	for _, arr := range arrs {
		writeValueKey(&b, arr, i)
	}
	return b.String()
}

func writeValueKey(b *strings.Builder, arr arrow.Array, i int) {
	if arr.IsNull(i) {
		b.WriteString("n;")
		return
	}
	switch typed := arr.(type) {
	case *array.String:
		v := typed.Value(i)
		b.WriteString("s")
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	case *array.Int64:
		b.WriteString("i")
		b.WriteString(strconv.FormatInt(typed.Value(i), 10))
	case *array.Int32:
		b.WriteString("i")
		b.WriteString(strconv.FormatInt(int64(typed.Value(i)), 10))
	case *array.Float64:
		b.WriteString("f")
		b.WriteString(strconv.FormatFloat(typed.Value(i), 'g', -1, 64))
	case *array.Float32:
		b.WriteString("f")
		b.WriteString(strconv.FormatFloat(float64(typed.Value(i)), 'g', -1, 64))
	case *array.Boolean:
		b.WriteString("b")
		b.WriteString(strconv.FormatBool(typed.Value(i)))
	}
	b.WriteByte(';')
}
