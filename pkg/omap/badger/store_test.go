package badger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/omap/omaptest"
)

// TestBadgerStore runs the omap conformance suite against the badger
// backend.
func TestBadgerStore(t *testing.T) {
	suite := &omaptest.StoreTestSuite{
		NewStore: func(t *testing.T) omap.Store {
			store, err := NewBadgerStore()
			require.NoError(t, err)
			return store
		},
	}

	suite.Run(t)
}
