// Package omaptest provides a conformance suite for omap.Store
// implementations. It tests the interface contract, not implementation
// details, so the memory and badger backends share one set of expectations.
package omaptest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/rados"
)

// StoreTestSuite exercises the omap.Store contract.
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test, ensuring isolation.
	NewStore func(t *testing.T) omap.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("SetAndGet", suite.RunSetAndGetTests)
	t.Run("Pagination", suite.RunPaginationTests)
	t.Run("PrefixFilter", suite.RunPrefixFilterTests)
	t.Run("Removal", suite.RunRemovalTests)
	t.Run("Header", suite.RunHeaderTests)
	t.Run("Isolation", suite.RunIsolationTests)
}

func (suite *StoreTestSuite) newStore(t *testing.T) omap.Store {
	t.Helper()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var testLoc = rados.Locator{Namespace: "ns", OID: "obj"}

func (suite *StoreTestSuite) RunSetAndGetTests(t *testing.T) {
	t.Run("missing object lists empty", func(t *testing.T) {
		store := suite.newStore(t)

		entries, more, err := store.List(testLoc, "", "", 100)
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.False(t, more)
	})

	t.Run("set then get by keys", func(t *testing.T) {
		store := suite.newStore(t)

		require.NoError(t, store.Set(testLoc, map[string][]byte{
			"alpha": []byte("1"),
			"beta":  []byte("2"),
		}))

		vals, err := store.GetByKeys(testLoc, []string{"alpha", "gamma"})
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"alpha": []byte("1")}, vals)
	})

	t.Run("set replaces existing value", func(t *testing.T) {
		store := suite.newStore(t)

		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": []byte("old")}))
		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": []byte("new")}))

		vals, err := store.GetByKeys(testLoc, []string{"k"})
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), vals["k"])
	})

	t.Run("locators are independent", func(t *testing.T) {
		store := suite.newStore(t)
		other := rados.Locator{Namespace: "ns", OID: "other"}

		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": []byte("v")}))

		vals, err := store.GetByKeys(other, []string{"k"})
		require.NoError(t, err)
		assert.Empty(t, vals)
	})

	t.Run("colliding locator encodings stay separate", func(t *testing.T) {
		store := suite.newStore(t)
		a := rados.Locator{Namespace: "a/b", OID: "c"}
		b := rados.Locator{Namespace: "a", OID: "b/c"}

		require.NoError(t, store.Set(a, map[string][]byte{"k": []byte("va")}))

		vals, err := store.GetByKeys(b, []string{"k"})
		require.NoError(t, err)
		assert.Empty(t, vals)
	})
}

func (suite *StoreTestSuite) RunPaginationTests(t *testing.T) {
	seed := func(t *testing.T) omap.Store {
		store := suite.newStore(t)
		require.NoError(t, store.Set(testLoc, map[string][]byte{
			"a": []byte("1"), "b": []byte("2"), "c": []byte("3"), "d": []byte("4"),
		}))
		return store
	}

	t.Run("first page reports more", func(t *testing.T) {
		store := seed(t)

		entries, more, err := store.List(testLoc, "", "", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Key)
		assert.Equal(t, "b", entries[1].Key)
		assert.True(t, more)
	})

	t.Run("second page is final", func(t *testing.T) {
		store := seed(t)

		entries, more, err := store.List(testLoc, "b", "", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "c", entries[0].Key)
		assert.Equal(t, "d", entries[1].Key)
		assert.False(t, more)
	})

	t.Run("start after is exclusive", func(t *testing.T) {
		store := seed(t)

		entries, _, err := store.List(testLoc, "a", "", 100)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, "b", entries[0].Key)
	})

	t.Run("zero max returns nothing but reports more", func(t *testing.T) {
		store := seed(t)

		entries, more, err := store.List(testLoc, "", "", 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.True(t, more)
	})
}

func (suite *StoreTestSuite) RunPrefixFilterTests(t *testing.T) {
	seed := func(t *testing.T) omap.Store {
		store := suite.newStore(t)
		require.NoError(t, store.Set(testLoc, map[string][]byte{
			"img.1": []byte("a"), "img.2": []byte("b"),
			"txt.1": []byte("c"), "txt.2": []byte("d"),
		}))
		return store
	}

	t.Run("prefix filters entries", func(t *testing.T) {
		store := seed(t)

		entries, _, err := store.List(testLoc, "", "img.", 100)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "img.1", entries[0].Key)
		assert.Equal(t, "img.2", entries[1].Key)
	})

	t.Run("more counts keys beyond the page even outside the prefix", func(t *testing.T) {
		store := seed(t)

		// The two img keys fill the page; the txt keys remain unscanned, so
		// more is true although neither matches the prefix.
		entries, more, err := store.List(testLoc, "", "img.", 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, more)
	})
}

func (suite *StoreTestSuite) RunRemovalTests(t *testing.T) {
	seed := func(t *testing.T) omap.Store {
		store := suite.newStore(t)
		require.NoError(t, store.Set(testLoc, map[string][]byte{
			"a": []byte("1"), "b": []byte("2"), "c": []byte("3"), "d": []byte("4"),
		}))
		return store
	}

	t.Run("remove keys", func(t *testing.T) {
		store := seed(t)

		require.NoError(t, store.RemoveKeys(testLoc, []string{"b", "missing"}))

		entries, _, err := store.List(testLoc, "", "", 100)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "a", entries[0].Key)
		assert.Equal(t, "c", entries[1].Key)
	})

	t.Run("remove range is half open", func(t *testing.T) {
		store := seed(t)

		require.NoError(t, store.RemoveRange(testLoc, "b", "d"))

		entries, _, err := store.List(testLoc, "", "", 100)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Key)
		assert.Equal(t, "d", entries[1].Key)
	})

	t.Run("clear keeps header", func(t *testing.T) {
		store := seed(t)
		require.NoError(t, store.SetHeader(testLoc, []byte("hdr")))

		require.NoError(t, store.Clear(testLoc))

		entries, _, err := store.List(testLoc, "", "", 100)
		require.NoError(t, err)
		assert.Empty(t, entries)

		header, err := store.Header(testLoc)
		require.NoError(t, err)
		assert.Equal(t, []byte("hdr"), header)
	})

	t.Run("drop erases everything", func(t *testing.T) {
		store := seed(t)
		require.NoError(t, store.SetHeader(testLoc, []byte("hdr")))

		require.NoError(t, store.Drop(testLoc))

		entries, _, err := store.List(testLoc, "", "", 100)
		require.NoError(t, err)
		assert.Empty(t, entries)

		header, err := store.Header(testLoc)
		require.NoError(t, err)
		assert.Empty(t, header)
	})
}

func (suite *StoreTestSuite) RunHeaderTests(t *testing.T) {
	t.Run("unset header is empty", func(t *testing.T) {
		store := suite.newStore(t)

		header, err := store.Header(testLoc)
		require.NoError(t, err)
		assert.Empty(t, header)
	})

	t.Run("header round trip", func(t *testing.T) {
		store := suite.newStore(t)

		require.NoError(t, store.SetHeader(testLoc, []byte("blob")))

		header, err := store.Header(testLoc)
		require.NoError(t, err)
		assert.Equal(t, []byte("blob"), header)
	})

	t.Run("header is independent of entries", func(t *testing.T) {
		store := suite.newStore(t)

		require.NoError(t, store.SetHeader(testLoc, []byte("blob")))
		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": []byte("v")}))
		require.NoError(t, store.RemoveKeys(testLoc, []string{"k"}))

		header, err := store.Header(testLoc)
		require.NoError(t, err)
		assert.Equal(t, []byte("blob"), header)
	})
}

func (suite *StoreTestSuite) RunIsolationTests(t *testing.T) {
	t.Run("stored values are copies", func(t *testing.T) {
		store := suite.newStore(t)

		val := []byte("original")
		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": val}))
		val[0] = 'X'

		vals, err := store.GetByKeys(testLoc, []string{"k"})
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), vals["k"])
	})

	t.Run("returned values are copies", func(t *testing.T) {
		store := suite.newStore(t)

		require.NoError(t, store.Set(testLoc, map[string][]byte{"k": []byte("original")}))

		vals, err := store.GetByKeys(testLoc, []string{"k"})
		require.NoError(t, err)
		vals["k"][0] = 'X'

		again, err := store.GetByKeys(testLoc, []string{"k"})
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), again["k"])
	})
}
