package verb

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/resolve"
)

// Keep keeps the rows for which every predicate holds
type Keep struct {
	op         string
	predicates []string
	maxDepth   int
}

// NewKeep creates the keep verb
func NewKeep(predicates ...string) *Keep {
	return newKeep("Keep", predicates)
}

// NewFilter creates the filter verb, an alias of keep that reports errors as Filter
func NewFilter(predicates ...string) *Keep {
	return newKeep("Filter", predicates)
}

func newKeep(op string, predicates []string) *Keep {
	return &Keep{
		op:         op,
		predicates: append([]string(nil), predicates...),
		maxDepth:   config.GetGlobalConfig().MaxExpressionDepth,
	}
}

// Apply applies the predicates in order; without predicates every row is kept
func (k *Keep) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	return resolve.Filter(df, k.predicates, resolve.Options{Op: k.op, MaxDepth: k.maxDepth})
}

func (k *Keep) String() string {
	if k.op == "Filter" {
		return fmt.Sprintf("filter(%s)", quoteAll(k.predicates))
	}
	return fmt.Sprintf("keep(%s)", quoteAll(k.predicates))
}
