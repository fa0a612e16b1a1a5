package chat

import (
	"fmt"

	"sohbet-lite/core"
)

// ErrTooLarge is an oversized upload. It is an invalid input.
var ErrTooLarge = fmt.Errorf("%w: payload too large", core.ErrInvalidInput)
