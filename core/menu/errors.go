package menu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core/user"
)

var errNegativeCount = errors.New("negative count")

// BuildError is returned when any badge of a menu could not be computed.
// No partially counted menu is ever returned or cached.
type BuildError struct {
	Identity user.Identity
	Badge    Badge
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building menu of %s: counting %s: %v", e.Identity, e.Badge, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func IsBuildFailure(err error) bool {
	var bErr *BuildError
	return errors.As(err, &bErr)
}
