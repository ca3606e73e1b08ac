package memory

import (
	"time"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Read returns a copy of up to length bytes at off from the object,
// resolved against the context's read view. length of 0 reads the whole
// object from off. The range is clipped to the object's bounds; the
// returned buffer is independent of internal storage.
func (c *IoCtx) Read(oid string, length, off uint64) ([]byte, error) {
	if err := c.fencedErr("read", oid); err != nil {
		return nil, err
	}

	trans := c.transaction(oid)

	var file *File
	{
		c.pool.mu.RLock()
		file = c.getFile(trans.Locator, false, c.snapRead, rados.SnapContext{})
		c.pool.mu.RUnlock()
	}
	if file == nil {
		return nil, &rados.Error{Code: rados.CodeNotFound, Op: "read", Object: oid}
	}

	file.mu.RLock()
	defer file.mu.RUnlock()

	if length == 0 {
		length = uint64(len(file.data))
	}
	length = clipIO(off, length, uint64(len(file.data)))

	out := cloneBytes(sliceRange(file.data, off, length))
	if c.pool.metrics != nil {
		c.pool.metrics.AddBytesRead(len(out))
	}
	return out, nil
}

// SparseRead reads like Read but also reports the data extents within the
// clipped range. The stand-in performs no sparse detection: it reports one
// dense extent covering the whole clipped range. Callers depend on this
// exact shape; do not refine it into real hole detection.
func (c *IoCtx) SparseRead(oid string, off, length uint64) ([]rados.Extent, []byte, error) {
	if err := c.fencedErr("sparse_read", oid); err != nil {
		return nil, nil, err
	}

	trans := c.transaction(oid)

	var file *File
	{
		c.pool.mu.RLock()
		file = c.getFile(trans.Locator, false, c.snapRead, rados.SnapContext{})
		c.pool.mu.RUnlock()
	}
	if file == nil {
		return nil, nil, &rados.Error{Code: rados.CodeNotFound, Op: "sparse_read", Object: oid}
	}

	file.mu.RLock()
	defer file.mu.RUnlock()

	length = clipIO(off, length, uint64(len(file.data)))

	var extents []rados.Extent
	if length > 0 {
		extents = []rados.Extent{{Offset: off, Length: length}}
	}
	return extents, cloneBytes(sliceRange(file.data, off, length)), nil
}

// Stat returns the head revision's size and modification time.
func (c *IoCtx) Stat(oid string) (uint64, time.Time, error) {
	if err := c.fencedErr("stat", oid); err != nil {
		return 0, time.Time{}, err
	}

	trans := c.transaction(oid)

	var file *File
	{
		c.pool.mu.RLock()
		file = c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
		c.pool.mu.RUnlock()
	}
	if file == nil {
		return 0, time.Time{}, &rados.Error{Code: rados.CodeNotFound, Op: "stat", Object: oid}
	}

	file.mu.RLock()
	defer file.mu.RUnlock()
	return uint64(len(file.data)), file.mtime, nil
}

// AssertExists succeeds iff a revision qualifies under the context's read
// view.
func (c *IoCtx) AssertExists(oid string) error {
	if err := c.fencedErr("assert_exists", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	if c.getFile(trans.Locator, false, c.snapRead, rados.SnapContext{}) == nil {
		return &rados.Error{Code: rados.CodeNotFound, Op: "assert_exists", Object: oid}
	}
	return nil
}

// AssertVersion compares the caller's version against the head's objver:
// CodeRange when below, CodeOverflow when above.
func (c *IoCtx) AssertVersion(oid string, ver uint64) error {
	if err := c.fencedErr("assert_version", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	file := c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
	if file == nil || !file.exists {
		return &rados.Error{Code: rados.CodeNotFound, Op: "assert_version", Object: oid}
	}
	if ver < file.objver {
		return &rados.Error{Code: rados.CodeRange, Op: "assert_version", Object: oid}
	}
	if ver > file.objver {
		return &rados.Error{Code: rados.CodeOverflow, Op: "assert_version", Object: oid}
	}
	return nil
}

// Version returns the head's objver: the cumulative mutation count for the
// locator's chain.
func (c *IoCtx) Version(oid string) (uint64, error) {
	if err := c.fencedErr("version", oid); err != nil {
		return 0, err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	file := c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
	if file == nil {
		return 0, &rados.Error{Code: rados.CodeNotFound, Op: "version", Object: oid}
	}
	return file.objver, nil
}

// GetCurrentVer returns the head's epoch: the pool epoch at its last
// mutation, usable as an optimistic-concurrency token ("has anything in
// this object changed since I last read").
func (c *IoCtx) GetCurrentVer(oid string) (uint64, error) {
	if err := c.fencedErr("get_current_ver", oid); err != nil {
		return 0, err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	file := c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
	if file == nil {
		return 0, &rados.Error{Code: rados.CodeNotFound, Op: "get_current_ver", Object: oid}
	}
	return file.epoch, nil
}

// Cmpext byte-compares cmp against the stored data at off, resolved
// against the context's read view. Bytes beyond the stored length compare
// as zero, and a missing object compares as all zeros. On the first
// mismatching byte the verb fails with code -(4095+index); see
// rados.MismatchIndex.
func (c *IoCtx) Cmpext(oid string, off uint64, cmp []byte) error {
	if err := c.fencedErr("cmpext", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	var file *File
	{
		c.pool.mu.RLock()
		file = c.getFile(trans.Locator, false, c.snapRead, rados.SnapContext{})
		c.pool.mu.RUnlock()
	}

	var stored []byte
	if file != nil {
		file.mu.RLock()
		length := clipIO(off, uint64(len(cmp)), uint64(len(file.data)))
		stored = cloneBytes(sliceRange(file.data, off, length))
		file.mu.RUnlock()
	}

	logger.Verb("cmpext", oid, "off=%d len=%d stored=%d", off, len(cmp), len(stored))
	return cmpextCompare(cmp, stored, oid)
}

// cmpextCompare reports the first byte of cmp differing from stored,
// treating missing stored bytes as zero.
func cmpextCompare(cmp, stored []byte, oid string) error {
	for i := 0; i < len(cmp); i++ {
		var storedByte byte
		if i < len(stored) {
			storedByte = stored[i]
		}
		if cmp[i] != storedByte {
			return &rados.Error{Code: rados.CmpMismatch(uint64(i)), Op: "cmpext", Object: oid}
		}
	}
	return nil
}
