package expr

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// kind is the evaluation type of a vector
type kind int

const (
	kindInt kind = iota
	kindFloat
	kindString
	kindBool
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindString:
		return "str"
	case kindBool:
		return "bool"
	default:
		return "unknown"
	}
}

func (k kind) numeric() bool {
	return k == kindInt || k == kindFloat
}

// vector is a decoded column: exactly one value slice is populated, matching kind
type vector struct {
	kind   kind
	ints   []int64
	floats []float64
	strs   []string
	bools  []bool
	valid  []bool
}

func (v *vector) len() int {
	return len(v.valid)
}

func (v *vector) isNull(i int) bool {
	return !v.valid[i]
}

// asFloats returns the values widened to float64
func (v *vector) asFloats() []float64 {
	if v.kind == kindFloat {
		return v.floats
	}
	out := make([]float64, len(v.ints))
	for i, x := range v.ints {
		out[i] = float64(x)
	}
	return out
}

func newVector(k kind, n int) *vector {
	v := &vector{kind: k, valid: make([]bool, n)}
	switch k {
	case kindInt:
		v.ints = make([]int64, n)
	case kindFloat:
		v.floats = make([]float64, n)
	case kindString:
		v.strs = make([]string, n)
	case kindBool:
		v.bools = make([]bool, n)
	}
	return v
}

// broadcast repeats a literal value n times
func broadcast(value interface{}, n int) (*vector, bool) {
	var v *vector
	switch x := value.(type) {
	case int64:
		v = newVector(kindInt, n)
		for i := range v.ints {
			v.ints[i] = x
		}
	case float64:
		v = newVector(kindFloat, n)
		for i := range v.floats {
			v.floats[i] = x
		}
	case string:
		v = newVector(kindString, n)
		for i := range v.strs {
			v.strs[i] = x
		}
	case bool:
		v = newVector(kindBool, n)
		for i := range v.bools {
			v.bools[i] = x
		}
	default:
		return nil, false
	}
	for i := range v.valid {
		v.valid[i] = true
	}
	return v, true
}

// decode copies an Arrow array into a vector
func decode(arr arrow.Array) (*vector, bool) {
	n := arr.Len()
	var v *vector
	switch typed := arr.(type) {
	case *array.Int64:
		v = newVector(kindInt, n)
		for i := 0; i < n; i++ {
			v.ints[i] = typed.Value(i)
		}
	case *array.Int32:
		v = newVector(kindInt, n)
		for i := 0; i < n; i++ {
			v.ints[i] = int64(typed.Value(i))
		}
	case *array.Float64:
		v = newVector(kindFloat, n)
		for i := 0; i < n; i++ {
			v.floats[i] = typed.Value(i)
		}
	case *array.Float32:
		v = newVector(kindFloat, n)
		for i := 0; i < n; i++ {
			v.floats[i] = float64(typed.Value(i))
		}
	case *array.String:
		v = newVector(kindString, n)
		for i := 0; i < n; i++ {
			v.strs[i] = typed.Value(i)
		}
	case *array.Boolean:
		v = newVector(kindBool, n)
		for i := 0; i < n; i++ {
			v.bools[i] = typed.Value(i)
		}
	default:
		return nil, false
	}
	for i := 0; i < n; i++ {
		v.valid[i] = arr.IsValid(i)
	}
	return v, true
}

// encode builds an Arrow array from the vector
func (v *vector) encode(mem memory.Allocator) arrow.Array {
	switch v.kind {
	case kindInt:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v.ints, v.valid)
		return b.NewArray()
	case kindFloat:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v.floats, v.valid)
		return b.NewArray()
	case kindString:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(v.strs, v.valid)
		return b.NewArray()
	default:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(v.bools, v.valid)
		return b.NewArray()
	}
}
