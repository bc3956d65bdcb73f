package linalg

import (
	"fmt"

	"gomarkov/domain/core"
)

// Toolkit sentinels. Each wraps a domain error kind so callers can match
// either the precise condition or the broad kind with errors.Is.
var (
	ErrEmptyMatrix       = fmt.Errorf("%w: linalg: empty matrix", core.ErrInvalidInput)
	ErrRaggedMatrix      = fmt.Errorf("%w: linalg: rows have different lengths", core.ErrInvalidInput)
	ErrNonSquare         = fmt.Errorf("%w: linalg: matrix is not square", core.ErrInvalidInput)
	ErrDimensionMismatch = fmt.Errorf("%w: linalg: dimension mismatch", core.ErrInvalidInput)
	ErrNegativePower     = fmt.Errorf("%w: linalg: negative exponent", core.ErrInvalidInput)
	ErrNonFinite         = fmt.Errorf("%w: linalg: NaN or Inf entry", core.ErrInvalidInput)
	ErrSingular          = fmt.Errorf("%w: linalg: singular matrix", core.ErrNumericDegenerate)
)
