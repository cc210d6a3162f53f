package usecase

import (
	"fmt"

	"github.com/yz4230/retrigger/internal/entity"
)

var ErrInvalidAction = fmt.Errorf("%w: unknown action", entity.ErrInvalid)
