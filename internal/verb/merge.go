package verb

import (
	"fmt"
	"strings"

	"github.com/paveg/tidyframe/internal/config"
	"github.com/paveg/tidyframe/internal/dataframe"
)

// MergeWith joins the piped table (left) with a fixed right table
type MergeWith struct {
	right       *dataframe.DataFrame
	using       string
	on          []string
	leftSuffix  string
	rightSuffix string
}

// NewMergeWith creates the merge verb. using is one of inner_join, left_join,
// right_join or outer_join and is checked when the verb is applied. The verb
// keeps a reference to right until Release is called.
func NewMergeWith(right *dataframe.DataFrame, using string, on ...string) *MergeWith {
	cfg := config.GetGlobalConfig()
	return &MergeWith{
		right:       right.Drop(),
		using:       using,
		on:          append([]string(nil), on...),
		leftSuffix:  cfg.LeftSuffix,
		rightSuffix: cfg.RightSuffix,
	}
}

// Apply joins df with the right table
func (m *MergeWith) Apply(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	joinType, err := dataframe.ParseJoinType(m.using)
	if err != nil {
		return nil, err
	}
	return df.Join(m.right, &dataframe.JoinOptions{
		Type:        joinType,
		On:          m.on,
		LeftSuffix:  m.leftSuffix,
		RightSuffix: m.rightSuffix,
	})
}

// Release drops the reference to the right table
func (m *MergeWith) Release() {
	if m.right != nil {
		m.right.Release()
		m.right = nil
	}
}

func (m *MergeWith) String() string {
	return fmt.Sprintf("merge_with(%s on %s)", m.using, strings.Join(m.on, ", "))
}
