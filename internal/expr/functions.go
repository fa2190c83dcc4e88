package expr

import (
	"math"
	"slices"
)

// Function describes a whitelisted callable
type Function struct {
	Name  string
	Arity int
	apply func(args []*vector, n int) *vector
}

var functions = map[string]Function{
	"exp":   elementwise("exp", math.Exp),
	"log":   elementwise("log", math.Log),
	"log10": elementwise("log10", math.Log10),
	"cos":   elementwise("cos", math.Cos),
	"sin":   elementwise("sin", math.Sin),
	"tan":   elementwise("tan", math.Tan),
	"hypot": pairwise("hypot", math.Hypot),
	"pow":   pairwise("pow", math.Pow),
	"mean":  {Name: "mean", Arity: 1, apply: reduceMean},
	"std":   {Name: "std", Arity: 1, apply: reduceStd},
	"sum":   {Name: "sum", Arity: 1, apply: reduceSum},
}

// LookupFunction returns the whitelisted function called name
func LookupFunction(name string) (Function, bool) {
	fn, ok := functions[name]
	return fn, ok
}

// FunctionNames lists the whitelisted function names in sorted order
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for n := range functions {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func elementwise(name string, fn func(float64) float64) Function {
	return Function{Name: name, Arity: 1, apply: func(args []*vector, n int) *vector {
		in := args[0].asFloats()
		out := newVector(kindFloat, n)
		copy(out.valid, args[0].valid)
		for i, x := range in {
			out.floats[i] = fn(x)
		}
		return out
	}}
}

func pairwise(name string, fn func(a, b float64) float64) Function {
	return Function{Name: name, Arity: 2, apply: func(args []*vector, _ int) *vector {
		return zipFloats(args[0], args[1], fn)
	}}
}

// validFloats returns the non-null values widened to float64
func validFloats(v *vector) []float64 {
	all := v.asFloats()
	out := make([]float64, 0, len(all))
	for i, x := range all {
		if v.valid[i] {
			out = append(out, x)
		}
	}
	return out
}

func scalarFloat(x float64, ok bool, n int) *vector {
	out := newVector(kindFloat, n)
	for i := range out.floats {
		out.floats[i] = x
		out.valid[i] = ok
	}
	return out
}

func reduceMean(args []*vector, n int) *vector {
	values := validFloats(args[0])
	if len(values) == 0 {
		return scalarFloat(0, false, n)
	}
	var total float64
	for _, x := range values {
		total += x
	}
	return scalarFloat(total/float64(len(values)), true, n)
}

// reduceStd is the population standard deviation
func reduceStd(args []*vector, n int) *vector {
	values := validFloats(args[0])
	if len(values) == 0 {
		return scalarFloat(0, false, n)
	}
	var total float64
	for _, x := range values {
		total += x
	}
	mean := total / float64(len(values))
	var ss float64
	for _, x := range values {
		ss += (x - mean) * (x - mean)
	}
	return scalarFloat(math.Sqrt(ss/float64(len(values))), true, n)
}

// reduceSum keeps integer sums integral
func reduceSum(args []*vector, n int) *vector {
	in := args[0]
	if in.kind == kindInt {
		var total int64
		for i, x := range in.ints {
			if in.valid[i] {
				total += x
			}
		}
		out, _ := broadcast(total, n)
		return out
	}
	var total float64
	for _, x := range validFloats(in) {
		total += x
	}
	return scalarFloat(total, true, n)
}
