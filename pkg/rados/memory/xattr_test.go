package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/radosmem/pkg/rados"
)

func TestXattrs(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		require.NoError(t, ioctx.SetXattr("obj", "owner", []byte("alice")))
		require.NoError(t, ioctx.SetXattr("obj", "tier", []byte("hot")))

		attrs, err := ioctx.GetXattrs("obj")
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{
			"owner": []byte("alice"),
			"tier":  []byte("hot"),
		}, attrs)
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.SetXattr("obj", "owner", []byte("alice")))

		require.NoError(t, ioctx.RmXattr("obj", "owner"))
		require.NoError(t, ioctx.RmXattr("obj", "owner"))

		attrs, err := ioctx.GetXattrs("obj")
		require.NoError(t, err)
		assert.Empty(t, attrs)
	})

	t.Run("ObjectWithoutAttrsReturnsEmptyMap", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		attrs, err := ioctx.GetXattrs("obj")
		require.NoError(t, err)
		assert.Empty(t, attrs)
	})
}

func TestCmpxattr(t *testing.T) {
	ioctx := newTestIoCtx(t)
	require.NoError(t, ioctx.SetXattr("obj", "gen", []byte("7")))
	require.NoError(t, ioctx.SetXattr("obj", "empty", nil))
	require.NoError(t, ioctx.SetXattr("obj", "text", []byte("abc")))

	t.Run("EqualSucceeds", func(t *testing.T) {
		assert.NoError(t, ioctx.Cmpxattr("obj", "gen", rados.CompareEQ, 7))
	})

	t.Run("SuppliedValueIsLeftOperand", func(t *testing.T) {
		// 9 > 7, so GT succeeds with the caller's value on the left.
		assert.NoError(t, ioctx.Cmpxattr("obj", "gen", rados.CompareGT, 9))

		err := ioctx.Cmpxattr("obj", "gen", rados.CompareGT, 5)
		assert.Equal(t, -125, rados.ErrorCode(err))
	})

	t.Run("FalseComparisonFails", func(t *testing.T) {
		err := ioctx.Cmpxattr("obj", "gen", rados.CompareEQ, 8)
		assert.Equal(t, -125, rados.ErrorCode(err))
	})

	t.Run("MissingAttributeFailsNoData", func(t *testing.T) {
		err := ioctx.Cmpxattr("obj", "absent", rados.CompareEQ, 0)
		assert.Equal(t, -61, rados.ErrorCode(err))
	})

	t.Run("EmptyAttributeDecodesAsZero", func(t *testing.T) {
		assert.NoError(t, ioctx.Cmpxattr("obj", "empty", rados.CompareEQ, 0))
	})

	t.Run("UnparsableAttributeFails", func(t *testing.T) {
		err := ioctx.Cmpxattr("obj", "text", rados.CompareEQ, 0)
		assert.Equal(t, -22, rados.ErrorCode(err))
	})
}

func TestCmpxattrStr(t *testing.T) {
	ioctx := newTestIoCtx(t)
	require.NoError(t, ioctx.SetXattr("obj", "name", []byte("bbb")))

	t.Run("LexicographicComparison", func(t *testing.T) {
		assert.NoError(t, ioctx.CmpxattrStr("obj", "name", rados.CompareEQ, []byte("bbb")))
		assert.NoError(t, ioctx.CmpxattrStr("obj", "name", rados.CompareGT, []byte("ccc")))
		assert.NoError(t, ioctx.CmpxattrStr("obj", "name", rados.CompareLT, []byte("aaa")))
	})

	t.Run("FalseComparisonFails", func(t *testing.T) {
		err := ioctx.CmpxattrStr("obj", "name", rados.CompareLT, []byte("ccc"))
		assert.Equal(t, -125, rados.ErrorCode(err))
	})

	t.Run("MissingAttributeFailsNoData", func(t *testing.T) {
		err := ioctx.CmpxattrStr("obj", "absent", rados.CompareEQ, []byte("x"))
		assert.Equal(t, -61, rados.ErrorCode(err))
	})
}
