package refnum

import (
	"strings"

	"github.com/google/uuid"
)

// Generate produces a reference number of the form PREFIX-SUFFIX where the
// suffix is derived from a UUIDv7. The time-ordered, globally unique suffix
// keeps concurrent postings for the same organization collision-free without
// a per-organization counter; the store's uniqueness constraint is the
// backstop.
func Generate(prefix string) string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4.
		u = uuid.New()
	}
	suffix := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	return prefix + "-" + suffix[:20]
}
