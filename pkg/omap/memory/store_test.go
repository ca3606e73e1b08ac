package memory

import (
	"testing"

	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/omap/omaptest"
)

// TestMemoryStore runs the omap conformance suite against the in-memory
// backend.
func TestMemoryStore(t *testing.T) {
	suite := &omaptest.StoreTestSuite{
		NewStore: func(t *testing.T) omap.Store {
			return NewMemoryStore()
		},
	}

	suite.Run(t)
}
