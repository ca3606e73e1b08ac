package memory_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/radosmem/pkg/rados"
)

func TestOmapSetGet(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{
			"alpha": []byte("1"),
			"beta":  []byte("2"),
		}))

		vals, err := ioctx.OmapGetVals("obj", "", "", 100)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{
			"alpha": []byte("1"),
			"beta":  []byte("2"),
		}, vals)
	})

	t.Run("MutationCreatesMissingObject", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{"k": []byte("v")}))

		assert.NoError(t, ioctx.AssertExists("obj"))
	})

	t.Run("ReadOnMissingObjectFails", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		_, err := ioctx.OmapGetVals("missing", "", "", 100)
		assert.Equal(t, -2, rados.ErrorCode(err))

		_, err = ioctx.OmapGetValsByKeys("missing", []string{"k"})
		assert.Equal(t, -2, rados.ErrorCode(err))
	})

	t.Run("GetByKeysSkipsMissingKeys", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{"present": []byte("v")}))

		vals, err := ioctx.OmapGetValsByKeys("obj", []string{"present", "absent"})
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"present": []byte("v")}, vals)
	})
}

func TestOmapPagination(t *testing.T) {
	ioctx := newTestIoCtx(t)

	vals := make(map[string][]byte)
	for i := 0; i < 5; i++ {
		vals[fmt.Sprintf("key%d", i)] = []byte{byte(i)}
	}
	require.NoError(t, ioctx.OmapSet("obj", vals))

	t.Run("PagesAreDisjointAndOrdered", func(t *testing.T) {
		page, more, err := ioctx.OmapGetVals2("obj", "", "", 2)
		require.NoError(t, err)
		assert.True(t, more)
		assert.Equal(t, map[string][]byte{
			"key0": {0},
			"key1": {1},
		}, page)

		page, more, err = ioctx.OmapGetVals2("obj", "key1", "", 100)
		require.NoError(t, err)
		assert.False(t, more)
		assert.Equal(t, map[string][]byte{
			"key2": {2},
			"key3": {3},
			"key4": {4},
		}, page)
	})

	t.Run("PrefixFilters", func(t *testing.T) {
		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{"other": []byte("x")}))

		page, _, err := ioctx.OmapGetVals2("obj", "", "key", 100)
		require.NoError(t, err)
		assert.Len(t, page, 5)
		assert.NotContains(t, page, "other")
	})
}

func TestOmapRemoval(t *testing.T) {
	t.Run("RmKeys", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{
			"a": []byte("1"), "b": []byte("2"), "c": []byte("3"),
		}))

		require.NoError(t, ioctx.OmapRmKeys("obj", []string{"a", "c", "missing"}))

		vals, err := ioctx.OmapGetVals("obj", "", "", 100)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"b": []byte("2")}, vals)
	})

	t.Run("RmRangeIsHalfOpen", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{
			"a": []byte("1"), "b": []byte("2"), "c": []byte("3"), "d": []byte("4"),
		}))

		require.NoError(t, ioctx.OmapRmRange("obj", "b", "d"))

		vals, err := ioctx.OmapGetVals("obj", "", "", 100)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"a": []byte("1"), "d": []byte("4")}, vals)
	})

	t.Run("ClearKeepsHeader", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.OmapSetHeader("obj", []byte("header")))
		require.NoError(t, ioctx.OmapSet("obj", map[string][]byte{"k": []byte("v")}))

		require.NoError(t, ioctx.OmapClear("obj"))

		vals, err := ioctx.OmapGetVals("obj", "", "", 100)
		require.NoError(t, err)
		assert.Empty(t, vals)

		header, err := ioctx.OmapGetHeader("obj")
		require.NoError(t, err)
		assert.Equal(t, []byte("header"), header)
	})
}

func TestOmapHeader(t *testing.T) {
	t.Run("UnsetHeaderIsEmpty", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.Create("obj", false))

		header, err := ioctx.OmapGetHeader("obj")
		require.NoError(t, err)
		assert.Empty(t, header)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		require.NoError(t, ioctx.OmapSetHeader("obj", []byte("blob")))

		header, err := ioctx.OmapGetHeader("obj")
		require.NoError(t, err)
		assert.Equal(t, []byte("blob"), header)
	})
}
