package discoveryengine

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/caseforest/internal/core/domain"
)

const globalLocation = "global"

// Endpoint returns the API root for a location.
// Multi-region locations (us, eu) are served from a prefixed host.
func Endpoint(location string) string {
	location = strings.TrimSpace(location)
	if location == "" || location == globalLocation {
		return "https://discoveryengine.googleapis.com/"
	}
	return fmt.Sprintf("https://%s-discoveryengine.googleapis.com/", location)
}

func unavailable(transport string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrSearchUnavailable, transport, err)
}
