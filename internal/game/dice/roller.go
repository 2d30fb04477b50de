package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Roller rolls single dice from a Source and logs each roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller over src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll returns a uniformly distributed integer in [1, sides].
//
// Precondition: sides >= 1. Panics otherwise.
// Postcondition: 1 <= result <= sides.
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		panic(fmt.Sprintf("dice: Roll called with sides=%d", sides))
	}
	face := r.src.Intn(sides) + 1
	r.logger.Debug("dice roll",
		zap.String("expression", fmt.Sprintf("1d%d", sides)),
		zap.Int("total", face),
	)
	return face
}
