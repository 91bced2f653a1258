package sim

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a prefixed unique id, replacing the original's
// f"{prefix}_{owner}_{time.time()}" string hack with a real UUID.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
