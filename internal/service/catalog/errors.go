package catalog

import "errors"

var ErrShowNotFound = errors.New("show not found")
