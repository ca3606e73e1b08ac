package memory

import (
	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// ListSnaps returns the ordered clone descriptors for the object's chain,
// oldest first, optionally followed by a head descriptor when the head is
// live. Each clone's overlap is read from the next-newer revision's
// bookkeeping: those are the byte ranges the two revisions still share.
func (c *IoCtx) ListSnaps(oid string) (*rados.SnapSet, error) {
	if err := c.fencedErr("list_snaps", oid); err != nil {
		return nil, err
	}

	trans := c.transaction(oid)
	out := &rados.SnapSet{}

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	chain, ok := c.pool.files[trans.Locator]
	if !ok {
		return nil, &rados.Error{Code: rados.CodeNotFound, Op: "list_snaps", Object: oid}
	}

	includeHead := false
	for i, file := range chain {
		if len(chain) <= 1 {
			break
		}
		out.Seq = file.snapID
		if i == len(chain)-1 {
			includeHead = true
			break
		}

		out.Seq++
		if !file.exists {
			continue
		}

		next := chain[i+1]
		var overlap []rados.Extent
		if next.exists {
			overlap = next.snapOverlap.Extents()
		}

		out.Clones = append(out.Clones, rados.CloneInfo{
			CloneID: file.snapID,
			Snaps:   append([]rados.SnapID(nil), file.snaps...),
			Overlap: overlap,
			Size:    uint64(len(file.data)),
		})
	}

	head := chain[len(chain)-1]
	if (len(chain) == 1 && len(head.data) > 0) || includeHead {
		if head.exists {
			head.mu.RLock()
			if out.Seq == 0 && !includeHead {
				out.Seq = head.snapID
			}
			out.Clones = append(out.Clones, rados.CloneInfo{
				CloneID: rados.SnapHead,
				Size:    uint64(len(head.data)),
			})
			head.mu.RUnlock()
		}
	}

	logger.Verb("list_snaps", oid, "seq=%d clones=%d", out.Seq, len(out.Clones))
	return out, nil
}

// SelfmanagedSnapCreate allocates a new snapshot id from the pool's
// counter and registers it live. Self-managed ids model point-in-time
// group snapshots taken by the application rather than the pool.
func (c *IoCtx) SelfmanagedSnapCreate() (id rados.SnapID, err error) {
	defer func() { c.pool.observe("selfmanaged_snap_create", err) }()

	if err := c.fencedErr("selfmanaged_snap_create", ""); err != nil {
		return 0, err
	}

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	c.pool.snapID++
	id = c.pool.snapID
	c.pool.snapSeqs[id] = struct{}{}
	c.pool.epoch++

	logger.Verb("selfmanaged_snap_create", "", "id=%d", id)
	return id, nil
}

// SelfmanagedSnapRemove unregisters a live snapshot id. Object revisions
// frozen under the id are not reclaimed.
func (c *IoCtx) SelfmanagedSnapRemove(id rados.SnapID) (err error) {
	defer func() { c.pool.observe("selfmanaged_snap_remove", err) }()

	if err := c.fencedErr("selfmanaged_snap_remove", ""); err != nil {
		return err
	}

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	if _, ok := c.pool.snapSeqs[id]; !ok {
		return &rados.Error{Code: rados.CodeNotFound, Op: "selfmanaged_snap_remove"}
	}
	delete(c.pool.snapSeqs, id)
	c.pool.epoch++

	logger.Verb("selfmanaged_snap_remove", "", "id=%d", id)
	return nil
}

// SelfmanagedSnapRollback restores the object to the revision visible as
// of the context's read snapshot. Depending on how far the head has moved
// it discards a too-new head, overwrites the head in place, or clones an
// older revision forward as the new head. The branches advance epoch and
// objver asymmetrically; callers depend on the upstream behavior, so it
// is deliberately not normalized.
func (c *IoCtx) SelfmanagedSnapRollback(oid string, id rados.SnapID) (err error) {
	defer func() { c.pool.observe("selfmanaged_snap_rollback", err) }()

	if err := c.fencedErr("selfmanaged_snap_rollback", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("selfmanaged_snap_rollback", oid, "id=%d snap_read=%d", id, c.snapRead)

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	chain, ok := c.pool.files[trans.Locator]
	if !ok {
		return nil
	}

	versions := 0
	for i := len(chain) - 1; i >= 0; i-- {
		file := chain[i]
		if file.snapID < c.snapRead {
			switch {
			case versions == 0:
				// Already at the snapshot version.
			case file.snapID == rados.NoSnap && versions == 1:
				// Discard the current head; the next revision down is the
				// correct version.
				c.pool.files[trans.Locator] = chain[:len(chain)-1]
			case file.snapID == rados.NoSnap:
				// Overwrite in place with an unversioned copy.
				clone := cloneFrom(file)
				clone.snapID = rados.NoSnap
				chain[i] = clone
			default:
				// Clone the older revision forward as the new head.
				clone := cloneFrom(file)
				clone.snapID = c.pool.snapID
				c.pool.files[trans.Locator] = append(chain, clone)
			}
			return nil
		}
		versions++
	}
	c.pool.epoch++
	return nil
}
