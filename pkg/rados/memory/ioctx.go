package memory

import (
	"github.com/marmos91/radosmem/pkg/rados"
)

// IoCtx is the verb executor: the public operation surface bound to one
// pool, one namespace, a read snapshot view and a write snapshot context.
//
// An IoCtx is cheap; open one per goroutine rather than sharing, since the
// snap read view and snapshot context are per-context state. The underlying
// pool handles concurrent access from any number of contexts.
type IoCtx struct {
	client    *Client
	pool      *Pool
	namespace string

	// snapRead is the read view: NoSnap for the live head, or an explicit
	// snapshot id. Mutating verbs against a non-head view fail ReadOnly.
	snapRead rados.SnapID

	// snapc is the snapshot context applied to mutating verbs, driving
	// copy-on-write decisions.
	snapc rados.SnapContext
}

// Pool returns the pool this context operates on.
func (c *IoCtx) Pool() *Pool {
	return c.pool
}

// Namespace returns the context's object namespace.
func (c *IoCtx) Namespace() string {
	return c.namespace
}

// SetSnapRead selects the read view: NoSnap for the head, or an explicit
// snapshot id for historical reads.
func (c *IoCtx) SetSnapRead(snap rados.SnapID) {
	c.snapRead = snap
}

// SnapRead returns the current read view.
func (c *IoCtx) SnapRead() rados.SnapID {
	return c.snapRead
}

// SetSnapContext installs the write snapshot context. An invalid context
// (any id above Seq) fails with CodeInvalidArgument and leaves the current
// context unchanged.
func (c *IoCtx) SetSnapContext(snapc rados.SnapContext) error {
	if !snapc.Valid() {
		return &rados.Error{Code: rados.CodeInvalidArgument, Op: "set_snap_context"}
	}
	c.snapc = rados.SnapContext{
		Seq:   snapc.Seq,
		Snaps: append([]rados.SnapID(nil), snapc.Snaps...),
	}
	return nil
}

// SnapContext returns the current write snapshot context.
func (c *IoCtx) SnapContext() rados.SnapContext {
	return c.snapc
}

// locator resolves an object id against the context's namespace.
func (c *IoCtx) locator(oid string) rados.Locator {
	return rados.Locator{Namespace: c.namespace, OID: oid}
}

// transaction builds the per-operation state for a verb.
func (c *IoCtx) transaction(oid string) *rados.Transaction {
	return rados.NewTransaction(c.locator(oid))
}

// fencedErr returns the fencing error when the client is blocklisted. This
// is the first check of every verb.
func (c *IoCtx) fencedErr(op, oid string) error {
	if c.client.Fenced() {
		return &rados.Error{Code: rados.CodeFenced, Op: op, Object: oid}
	}
	return nil
}

// readOnlyErr returns the read-only error when the context's read view is
// not the head. Checked by mutating verbs after fencing.
func (c *IoCtx) readOnlyErr(op, oid string) error {
	if c.snapRead != rados.NoSnap {
		return &rados.Error{Code: rados.CodeReadOnly, Op: op, Object: oid}
	}
	return nil
}
