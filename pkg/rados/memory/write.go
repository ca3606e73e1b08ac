package memory

import (
	"time"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Create creates an empty head revision. On a live object it succeeds as a
// no-op unless exclusive, in which case it fails with CodeAlreadyExists.
// The no-op path does not advance the pool epoch.
func (c *IoCtx) Create(oid string, exclusive bool) (err error) {
	defer func() { c.pool.observe("create", err) }()
	if err := c.fencedErr("create", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("create", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("create", oid, "exclusive=%v snapc.seq=%d", exclusive, c.snapc.Seq)

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	file := c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
	if file != nil && file.exists {
		if exclusive {
			return &rados.Error{Code: rados.CodeAlreadyExists, Op: "create", Object: oid}
		}
		return nil
	}

	newFile := c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
	c.pool.epoch++
	newFile.epoch = c.pool.epoch
	return nil
}

// Write copies data into the object at off, zero-extending it when the
// range lies past the current end. The write may fork a new head per the
// snapshot context.
func (c *IoCtx) Write(oid string, data []byte, off uint64) (err error) {
	defer func() { c.pool.observe("write", err) }()
	if err := c.fencedErr("write", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("write", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("write", oid, "extent=%d~%d snapc.seq=%d", off, len(data), c.snapc.Seq)

	var file *File
	var epoch uint64
	{
		c.pool.mu.Lock()
		file = c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
		c.pool.epoch++
		epoch = c.pool.epoch
		c.pool.mu.Unlock()
	}

	file.mu.Lock()
	defer file.mu.Unlock()

	length := uint64(len(data))
	if length > 0 {
		subtractOverlap(file, off, length)
	}

	file.data = ensureLength(file.data, off+length)
	copy(file.data[off:], data)
	file.epoch = epoch

	if c.pool.metrics != nil {
		c.pool.metrics.AddBytesWritten(len(data))
	}
	return nil
}

// WriteFull replaces the object's entire content. Unlike Write it fails
// with CodeNotFound when no live revision exists.
func (c *IoCtx) WriteFull(oid string, data []byte) (err error) {
	defer func() { c.pool.observe("write_full", err) }()
	if err := c.fencedErr("write_full", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("write_full", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("write_full", oid, "length=%d snapc.seq=%d", len(data), c.snapc.Seq)

	var file *File
	var epoch uint64
	{
		c.pool.mu.Lock()
		if c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{}) == nil {
			c.pool.mu.Unlock()
			return &rados.Error{Code: rados.CodeNotFound, Op: "write_full", Object: oid}
		}
		file = c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
		c.pool.epoch++
		epoch = c.pool.epoch
		c.pool.mu.Unlock()
	}

	file.mu.Lock()
	defer file.mu.Unlock()

	if len(data) > 0 {
		subtractOverlap(file, 0, uint64(len(data)))
	}

	file.data = cloneBytes(data)
	file.epoch = epoch

	if c.pool.metrics != nil {
		c.pool.metrics.AddBytesWritten(len(data))
	}
	return nil
}

// Append writes data at the current end of the object.
func (c *IoCtx) Append(oid string, data []byte) (err error) {
	defer func() { c.pool.observe("append", err) }()
	if err := c.fencedErr("append", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("append", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("append", oid, "length=%d snapc.seq=%d", len(data), c.snapc.Seq)

	file, _ := c.getFileSafe(trans, true, rados.NoSnap, c.snapc)

	// The verb takes its own epoch on top of the resolution's bump; the
	// head's epoch reflects the later of the two.
	c.pool.mu.Lock()
	c.pool.epoch++
	epoch := c.pool.epoch
	c.pool.mu.Unlock()

	file.mu.Lock()
	defer file.mu.Unlock()

	off := uint64(len(file.data))
	file.data = ensureLength(file.data, off+uint64(len(data)))
	copy(file.data[off:], data)
	file.epoch = epoch

	if c.pool.metrics != nil {
		c.pool.metrics.AddBytesWritten(len(data))
	}
	return nil
}

// Truncate grows (zero-filling) or shrinks the object to size.
func (c *IoCtx) Truncate(oid string, size uint64) (err error) {
	defer func() { c.pool.observe("truncate", err) }()
	if err := c.fencedErr("truncate", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("truncate", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("truncate", oid, "size=%d snapc.seq=%d", size, c.snapc.Seq)

	var file *File
	var epoch uint64
	{
		c.pool.mu.Lock()
		file = c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
		c.pool.epoch++
		epoch = c.pool.epoch
		c.pool.mu.Unlock()
	}

	file.mu.Lock()
	defer file.mu.Unlock()

	var changed rados.IntervalSet
	current := uint64(len(file.data))
	if current > size {
		changed.Insert(size, current-size)
		file.data = cloneBytes(file.data[:size])
	} else if current != size {
		changed.Insert(0, size)
		file.data = ensureLength(file.data, size)
	}

	changed.IntersectionOf(&file.snapOverlap)
	file.snapOverlap.Subtract(&changed)
	file.epoch = epoch
	return nil
}

// Zero clears len bytes at off. When the range reaches the current end of
// data the verb degrades to a truncate at off; otherwise it is equivalent
// to writing zero bytes. Zeroing a missing object succeeds without
// creating it.
func (c *IoCtx) Zero(oid string, off, length uint64) (err error) {
	defer func() { c.pool.observe("zero", err) }()
	if err := c.fencedErr("zero", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("zero", oid, "extent=%d~%d snapc.seq=%d", off, length, c.snapc.Seq)

	truncateRedirect := false
	{
		c.pool.mu.Lock()
		if c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{}) == nil {
			c.pool.mu.Unlock()
			return nil
		}
		file := c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)

		c.pool.epoch++

		file.mu.Lock()
		if length > 0 && off+length >= uint64(len(file.data)) {
			truncateRedirect = true
		}
		file.epoch = c.pool.epoch
		file.mu.Unlock()

		c.pool.mu.Unlock()
	}

	if truncateRedirect {
		return c.Truncate(oid, off)
	}
	return c.Write(oid, make([]byte, length), off)
}

// WriteSame tiles pattern across [off, off+length). length must be a
// positive multiple of the pattern length.
func (c *IoCtx) WriteSame(oid string, off, length uint64, pattern []byte) (err error) {
	defer func() { c.pool.observe("writesame", err) }()
	if err := c.fencedErr("writesame", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("writesame", oid); err != nil {
		return err
	}
	if len(pattern) == 0 || length == 0 || length%uint64(len(pattern)) != 0 {
		return &rados.Error{Code: rados.CodeInvalidArgument, Op: "writesame", Object: oid}
	}

	trans := c.transaction(oid)
	logger.Verb("writesame", oid, "extent=%d~%d pattern=%d snapc.seq=%d", off, length, len(pattern), c.snapc.Seq)

	var file *File
	var epoch uint64
	{
		c.pool.mu.Lock()
		file = c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
		c.pool.epoch++
		epoch = c.pool.epoch
		c.pool.mu.Unlock()
	}

	file.mu.Lock()
	defer file.mu.Unlock()

	subtractOverlap(file, off, length)

	file.data = ensureLength(file.data, off+length)
	for length > 0 {
		copy(file.data[off:off+uint64(len(pattern))], pattern)
		off += uint64(len(pattern))
		length -= uint64(len(pattern))
	}
	file.epoch = epoch
	return nil
}

// SetMtime sets the head revision's modification time.
func (c *IoCtx) SetMtime(oid string, t time.Time) (err error) {
	defer func() { c.pool.observe("set_mtime", err) }()
	if err := c.fencedErr("set_mtime", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("set_mtime", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	var file *File
	var epoch uint64
	{
		c.pool.mu.Lock()
		file = c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
		c.pool.epoch++
		epoch = c.pool.epoch
		c.pool.mu.Unlock()
	}

	file.mu.Lock()
	defer file.mu.Unlock()
	file.mtime = t
	file.epoch = epoch
	return nil
}

// SetAllocHint passes an allocation size hint. The stand-in only ensures
// the object exists; the hint itself is ignored and the pool
// epoch is not advanced.
func (c *IoCtx) SetAllocHint(oid string, expectedObjectSize, expectedWriteSize uint64) error {
	if err := c.fencedErr("set_alloc_hint", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("set_alloc_hint", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
	return nil
}

// Remove marks the head revision as not existing. When no historical
// revision remains the whole chain is erased along with the object's omap
// and xattr state; removal notifications fire whenever the removed head
// was the newest revision.
func (c *IoCtx) Remove(oid string) (err error) {
	defer func() { c.pool.observe("remove", err) }()
	if err := c.fencedErr("remove", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("remove", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("remove", oid, "snapc.seq=%d", c.snapc.Seq)

	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	loc := trans.Locator
	if c.getFile(loc, false, rados.NoSnap, c.snapc) == nil {
		return &rados.Error{Code: rados.CodeNotFound, Op: "remove", Object: oid}
	}
	file := c.getFile(loc, true, rados.NoSnap, c.snapc)

	{
		file.mu.Lock()
		file.exists = false
		file.mu.Unlock()
	}

	chain := c.pool.files[loc]
	if chain[len(chain)-1] == file {
		handlers := c.pool.handlers[loc]
		delete(c.pool.handlers, loc)
		for _, h := range handlers {
			h.HandleRemoved(loc)
		}
	}

	if len(chain) == 1 {
		delete(c.pool.files, loc)
		delete(c.pool.xattrs, loc)
		if dropErr := c.pool.omaps.Drop(loc); dropErr != nil {
			logger.Error("remove %s: dropping omap state: %v", oid, dropErr)
			return &rados.Error{Code: rados.CodeIOError, Op: "remove", Object: oid}
		}
	}
	c.pool.epoch++
	return nil
}

// subtractOverlap removes [off, off+length) from the revision's remaining
// overlap with the next-older revision. Callers hold the file lock.
func subtractOverlap(file *File, off, length uint64) {
	var touched rados.IntervalSet
	touched.Insert(off, length)
	touched.IntersectionOf(&file.snapOverlap)
	file.snapOverlap.Subtract(&touched)
}
