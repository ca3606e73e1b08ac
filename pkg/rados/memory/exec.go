package memory

import (
	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Exec dispatches a class method call through the cluster's injected
// ClassHandler. The engine loads no methods itself: the handler receives
// the method context (locator, read snapshot, snapshot context,
// transaction state) and the input payload and decides everything else.
// Without a handler installed the call fails with CodeNotSupported.
func (c *IoCtx) Exec(oid, class, method string, in []byte) (out []byte, err error) {
	defer func() { c.pool.observe("exec", err) }()

	if err := c.fencedErr("exec", oid); err != nil {
		return nil, err
	}

	handler := c.client.cluster.classHandler
	if handler == nil {
		return nil, &rados.Error{Code: rados.CodeNotSupported, Op: "exec", Object: oid}
	}

	trans := c.transaction(oid)
	mctx := &rados.MethodContext{
		Locator:     trans.Locator,
		SnapID:      c.snapRead,
		SnapContext: c.snapc,
		Transaction: trans,
	}

	logger.Verb("exec", oid, "%s.%s (%d bytes in)", class, method, len(in))
	out, code := handler.Call(class, method, mctx, in)
	if code < 0 {
		return nil, &rados.Error{Code: rados.Code(code), Op: "exec", Object: oid}
	}
	return out, nil
}
