package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/radosmem/pkg/rados"
	"github.com/marmos91/radosmem/pkg/rados/memory"
)

type recordingHandler struct {
	class, method string
	ctx           *rados.MethodContext
	in            []byte

	out  []byte
	code int
}

func (h *recordingHandler) Call(class, method string, ctx *rados.MethodContext, in []byte) ([]byte, int) {
	h.class, h.method, h.ctx, h.in = class, method, ctx, in
	return h.out, h.code
}

func TestExec(t *testing.T) {
	t.Run("NoHandlerFailsNotSupported", func(t *testing.T) {
		ioctx := newTestIoCtx(t)

		_, err := ioctx.Exec("obj", "rbd", "get_id", nil)
		assert.Equal(t, -95, rados.ErrorCode(err))
	})

	t.Run("HandlerReceivesMethodContext", func(t *testing.T) {
		handler := &recordingHandler{out: []byte("result")}
		cluster := memory.NewCluster(memory.WithClassHandler(handler))
		require.NoError(t, cluster.CreatePool("rbd"))

		ioctx, err := cluster.Connect().IoCtx("rbd", "ns")
		require.NoError(t, err)

		out, err := ioctx.Exec("obj", "lock", "acquire", []byte("payload"))
		require.NoError(t, err)
		assert.Equal(t, []byte("result"), out)

		assert.Equal(t, "lock", handler.class)
		assert.Equal(t, "acquire", handler.method)
		assert.Equal(t, []byte("payload"), handler.in)
		require.NotNil(t, handler.ctx)
		assert.Equal(t, rados.Locator{Namespace: "ns", OID: "obj"}, handler.ctx.Locator)
		assert.Equal(t, rados.NoSnap, handler.ctx.SnapID)
	})

	t.Run("NegativeHandlerCodeBecomesError", func(t *testing.T) {
		handler := &recordingHandler{code: int(rados.CodeNotFound)}
		cluster := memory.NewCluster(memory.WithClassHandler(handler))
		require.NoError(t, cluster.CreatePool("rbd"))

		ioctx, err := cluster.Connect().IoCtx("rbd", "")
		require.NoError(t, err)

		_, execErr := ioctx.Exec("obj", "lock", "acquire", nil)
		assert.Equal(t, -2, rados.ErrorCode(execErr))
	})
}

// sliceHandler is deliberately a non-comparable value type: unregistering
// one must not panic on interface comparison.
type sliceHandler struct {
	fired []rados.Locator
}

func (h sliceHandler) HandleRemoved(loc rados.Locator) {}

func TestRemovalHandlers(t *testing.T) {
	t.Run("FiresOnceOnHeadRemoval", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.Write("obj", []byte("x"), 0))

		var fired []rados.Locator
		require.NoError(t, ioctx.RegisterHandler("obj", rados.ObjectHandlerFunc(func(loc rados.Locator) {
			fired = append(fired, loc)
		})))

		require.NoError(t, ioctx.Remove("obj"))
		require.Len(t, fired, 1)
		assert.Equal(t, rados.Locator{OID: "obj"}, fired[0])

		// Registration is consumed by the removal.
		require.NoError(t, ioctx.Write("obj", []byte("y"), 0))
		require.NoError(t, ioctx.Remove("obj"))
		assert.Len(t, fired, 1)
	})

	t.Run("NonComparableHandlerDoesNotPanic", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.Write("obj", []byte("x"), 0))

		first := sliceHandler{fired: make([]rados.Locator, 0)}
		second := sliceHandler{fired: make([]rados.Locator, 0)}
		require.NoError(t, ioctx.RegisterHandler("obj", first))
		require.NoError(t, ioctx.UnregisterHandler("obj", second))

		require.NoError(t, ioctx.Remove("obj"))
	})

	t.Run("UnregisteredHandlerDoesNotFire", func(t *testing.T) {
		ioctx := newTestIoCtx(t)
		require.NoError(t, ioctx.Write("obj", []byte("x"), 0))

		fired := false
		h := rados.ObjectHandlerFunc(func(rados.Locator) { fired = true })
		require.NoError(t, ioctx.RegisterHandler("obj", h))
		require.NoError(t, ioctx.UnregisterHandler("obj", h))

		require.NoError(t, ioctx.Remove("obj"))
		assert.False(t, fired)
	})
}
