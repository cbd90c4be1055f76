package allocation

import "errors"

var ErrAllocationNotFound = errors.New("allocation not found")
