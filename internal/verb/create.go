package verb

import (
	"fmt"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
	"github.com/paveg/tidyframe/internal/resolve"
)

// Create adds or replaces one column per definition. Definitions may refer to
// each other in any order.
type Create struct {
	op       string
	defs     []Definition
	maxDepth int
	only     bool
}

// NewCreate creates the create verb
func NewCreate(defs ...Definition) *Create {
	return newCreate("Create", defs, false)
}

// NewMutate creates the mutate verb, an alias of create that reports errors as Mutate
func NewMutate(defs ...Definition) *Create {
	return newCreate("Mutate", defs, false)
}

// NewTransmute creates a verb that keeps only the defined columns
func NewTransmute(defs ...Definition) *Create {
	return newCreate("Transmute", defs, true)
}

func newCreate(op string, defs []Definition, only bool) *Create {
	return &Create{
		op:       op,
		defs:     append([]Definition(nil), defs...),
		maxDepth: config.GetGlobalConfig().MaxExpressionDepth,
		only:     only,
	}
}

// Apply resolves the definitions against df
func (c *Create) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	opts := resolve.Options{Op: c.op, MaxDepth: c.maxDepth}
	if c.only {
		return resolve.Transmute(df, c.defs, opts)
	}
	return resolve.Resolve(df, c.defs, opts)
}

func (c *Create) String() string {
	name := "create"
	switch c.op {
	case "Mutate":
		name = "mutate"
	case "Transmute":
		name = "transmute"
	}
	return fmt.Sprintf("%s(%s)", name, describeDefinitions(c.defs))
}
