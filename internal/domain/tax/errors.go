package tax

import "errors"

var ErrBracketConfig = errors.New("tax bracket table is misconfigured")
