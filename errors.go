package tidyframe

import (
	dferrors "github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/verb"
)

// DataFrameError reports a table engine failure such as a missing column
type DataFrameError = dferrors.DataFrameError

// ExpressionError reports an expression that could not be parsed, typed or resolved
type ExpressionError = dferrors.ExpressionError

// StepError reports which pipeline step failed; it wraps the verb's error
type StepError = verb.StepError

// Sentinels for errors.Is
var (
	// ErrInvalidExpression matches expressions outside the grammar or of the wrong type
	ErrInvalidExpression = dferrors.ErrInvalidExpression
	// ErrColumnDoesNotExist matches expressions referencing names that never resolve
	ErrColumnDoesNotExist = dferrors.ErrColumnDoesNotExist
	// ErrColumnNotFound matches verb arguments naming a missing column
	ErrColumnNotFound = dferrors.ErrColumnNotFound
	// ErrUnknownJoinType matches a MergeWith label outside the supported set
	ErrUnknownJoinType = dferrors.ErrUnknownJoinType
)
