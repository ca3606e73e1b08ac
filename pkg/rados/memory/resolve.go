package memory

import (
	"time"

	"github.com/marmos91/radosmem/pkg/rados"
)

// getFile resolves a locator and view to a revision. The caller must hold
// the pool lock: shared suffices for reads, exclusive is required when
// write is true.
//
// Read resolution (write=false):
//   - head view (NoSnap): the newest chain entry iff it exists, else nil —
//     an object whose head was removed is deleted from the head's
//     perspective even while historical revisions remain.
//   - snapshot view S: scanning newest to oldest, the first revision with
//     snapID < S; nil when it does not exist or no revision qualifies.
//     The value at snapshot S is the newest revision strictly older than S.
//
// Write resolution (write=true) never returns nil:
//   - no live head: a fresh revision is created with snapID = snapc.Seq.
//   - the snapshot context carries ids above the head's snapID (snapshots
//     were taken since the head was last written): the crossed ids are
//     frozen onto the outgoing head's snaps set, the head's bytes are
//     cloned into a new revision whose overlap initially spans the whole
//     clone, and the clone becomes the head with snapID = snapc.Seq.
//   - otherwise the existing head is mutated in place.
//
// Every write resolution increments the chain's objver by exactly one;
// forking carries the counter forward instead of resetting it.
func (c *IoCtx) getFile(loc rados.Locator, write bool, snapID rados.SnapID, snapc rados.SnapContext) *File {
	var file *File
	chain, hasChain := c.pool.files[loc]
	if hasChain {
		file = chain[len(chain)-1]
	} else if !write {
		return nil
	}

	if write {
		newVersion := false
		if file == nil || !file.exists {
			file = &File{exists: true}
			newVersion = true
		} else if len(snapc.Snaps) > 0 && file.snapID < snapc.Seq {
			// Snapshot boundary crossed: freeze the crossed ids onto the
			// outgoing head, then fork.
			for i := len(snapc.Snaps) - 1; i >= 0; i-- {
				id := snapc.Snaps[i]
				if id > file.snapID && id <= snapc.Seq {
					file.snaps = append(file.snaps, id)
				}
			}

			prev := file
			file = cloneFrom(prev)
			if len(prev.data) > 0 {
				file.snapOverlap.Insert(0, uint64(len(prev.data)))
			}
			newVersion = true
		}

		if newVersion {
			file.snapID = snapc.Seq
			file.mtime = time.Now()
			c.pool.files[loc] = append(c.pool.files[loc], file)
		}

		file.objver++
		return file
	}

	if snapID == rados.NoSnap {
		if !file.exists {
			return nil
		}
		return file
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].snapID < snapID {
			if !chain[i].exists {
				return nil
			}
			return chain[i]
		}
	}
	return nil
}

// getFileSafe resolves with its own pool locking. The transaction's write
// intent escalates a read resolution to the exclusive path, which also
// advances the pool epoch; the returned epoch is zero on the shared path.
func (c *IoCtx) getFileSafe(trans *rados.Transaction, write bool, snapID rados.SnapID, snapc rados.SnapContext) (*File, uint64) {
	write = write || trans.WriteIntent
	if write {
		c.pool.mu.Lock()
		defer c.pool.mu.Unlock()
		c.pool.epoch++
		return c.getFile(trans.Locator, true, snapID, snapc), c.pool.epoch
	}

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	return c.getFile(trans.Locator, false, snapID, snapc), 0
}

// poolOp runs fn under the pool lock, exclusive when the verb or the
// transaction carries write intent. The exclusive path advances the pool
// epoch before fn runs.
func (c *IoCtx) poolOp(trans *rados.Transaction, write bool, fn func(p *Pool) error) error {
	if write || trans.WriteIntent {
		c.pool.mu.Lock()
		defer c.pool.mu.Unlock()
		c.pool.epoch++
		return fn(c.pool)
	}

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()
	return fn(c.pool)
}
