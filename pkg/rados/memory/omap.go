package memory

import (
	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// omapReadFile resolves the head revision for an omap read verb. Omap
// reads require a live head; a removed or missing object fails with
// CodeNotFound.
func (c *IoCtx) omapReadFile(op, oid string, trans *rados.Transaction) (*File, error) {
	c.pool.mu.RLock()
	file := c.getFile(trans.Locator, false, rados.NoSnap, rados.SnapContext{})
	c.pool.mu.RUnlock()

	if file == nil {
		return nil, &rados.Error{Code: rados.CodeNotFound, Op: op, Object: oid}
	}
	return file, nil
}

// omapWriteFile resolves (creating or forking as needed) the head revision
// for an omap mutating verb and advances the pool epoch. Omap mutation on
// a missing object creates it.
func (c *IoCtx) omapWriteFile(trans *rados.Transaction) (*File, uint64) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	file := c.getFile(trans.Locator, true, rados.NoSnap, c.snapc)
	c.pool.epoch++
	return file, c.pool.epoch
}

// omapErr wraps a backend failure as an internal I/O error.
func omapErr(op, oid string, err error) error {
	logger.Error("%s %s: omap backend: %v", op, oid, err)
	return &rados.Error{Code: rados.CodeIOError, Op: op, Object: oid}
}

// OmapGetVals returns up to max key/value pairs with keys strictly greater
// than startAfter that carry the given prefix.
func (c *IoCtx) OmapGetVals(oid, startAfter, prefix string, max uint64) (map[string][]byte, error) {
	vals, _, err := c.OmapGetVals2(oid, startAfter, prefix, max)
	return vals, err
}

// OmapGetVals2 is OmapGetVals plus a flag reporting whether keys remain
// beyond the returned page (matching or not matching the prefix).
func (c *IoCtx) OmapGetVals2(oid, startAfter, prefix string, max uint64) (map[string][]byte, bool, error) {
	if err := c.fencedErr("omap_get_vals", oid); err != nil {
		return nil, false, err
	}

	trans := c.transaction(oid)
	file, err := c.omapReadFile("omap_get_vals", oid, trans)
	if err != nil {
		return nil, false, err
	}

	file.mu.RLock()
	defer file.mu.RUnlock()

	entries, more, lerr := c.pool.omaps.List(trans.Locator, startAfter, prefix, max)
	if lerr != nil {
		return nil, false, omapErr("omap_get_vals", oid, lerr)
	}

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, more, nil
}

// OmapGetValsByKeys returns the values stored under the requested keys;
// missing keys are absent from the result.
func (c *IoCtx) OmapGetValsByKeys(oid string, keys []string) (map[string][]byte, error) {
	if err := c.fencedErr("omap_get_vals_by_keys", oid); err != nil {
		return nil, err
	}

	trans := c.transaction(oid)
	file, err := c.omapReadFile("omap_get_vals_by_keys", oid, trans)
	if err != nil {
		return nil, err
	}

	file.mu.RLock()
	defer file.mu.RUnlock()

	vals, gerr := c.pool.omaps.GetByKeys(trans.Locator, keys)
	if gerr != nil {
		return nil, omapErr("omap_get_vals_by_keys", oid, gerr)
	}
	return vals, nil
}

// OmapSet inserts or replaces key/value pairs. The verb mutates the head:
// copy-on-write applies and the object is created when missing.
func (c *IoCtx) OmapSet(oid string, vals map[string][]byte) (err error) {
	defer func() { c.pool.observe("omap_set", err) }()
	if err := c.fencedErr("omap_set", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("omap_set", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("omap_set", oid, "keys=%d", len(vals))

	file, epoch := c.omapWriteFile(trans)

	file.mu.Lock()
	defer file.mu.Unlock()

	if serr := c.pool.omaps.Set(trans.Locator, vals); serr != nil {
		return omapErr("omap_set", oid, serr)
	}
	file.epoch = epoch
	return nil
}

// OmapRmKeys deletes the given keys; missing keys are ignored.
func (c *IoCtx) OmapRmKeys(oid string, keys []string) (err error) {
	defer func() { c.pool.observe("omap_rm_keys", err) }()
	if err := c.fencedErr("omap_rm_keys", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("omap_rm_keys", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("omap_rm_keys", oid, "keys=%d", len(keys))

	file, epoch := c.omapWriteFile(trans)

	file.mu.Lock()
	defer file.mu.Unlock()

	if rerr := c.pool.omaps.RemoveKeys(trans.Locator, keys); rerr != nil {
		return omapErr("omap_rm_keys", oid, rerr)
	}
	file.epoch = epoch
	return nil
}

// OmapRmRange deletes keys in the half-open range [begin, end).
func (c *IoCtx) OmapRmRange(oid, begin, end string) (err error) {
	defer func() { c.pool.observe("omap_rm_range", err) }()
	if err := c.fencedErr("omap_rm_range", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("omap_rm_range", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("omap_rm_range", oid, "[%q, %q)", begin, end)

	file, epoch := c.omapWriteFile(trans)

	file.mu.Lock()
	defer file.mu.Unlock()

	if rerr := c.pool.omaps.RemoveRange(trans.Locator, begin, end); rerr != nil {
		return omapErr("omap_rm_range", oid, rerr)
	}
	file.epoch = epoch
	return nil
}

// OmapClear deletes every key; the header survives.
func (c *IoCtx) OmapClear(oid string) (err error) {
	defer func() { c.pool.observe("omap_clear", err) }()
	if err := c.fencedErr("omap_clear", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("omap_clear", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("omap_clear", oid, "")

	file, epoch := c.omapWriteFile(trans)

	file.mu.Lock()
	defer file.mu.Unlock()

	if cerr := c.pool.omaps.Clear(trans.Locator); cerr != nil {
		return omapErr("omap_clear", oid, cerr)
	}
	file.epoch = epoch
	return nil
}

// OmapGetHeader returns the object's header blob, empty when never set.
func (c *IoCtx) OmapGetHeader(oid string) ([]byte, error) {
	if err := c.fencedErr("omap_get_header", oid); err != nil {
		return nil, err
	}

	trans := c.transaction(oid)

	file, _ := c.getFileSafe(trans, false, rados.NoSnap, rados.SnapContext{})
	if file == nil {
		return nil, &rados.Error{Code: rados.CodeNotFound, Op: "omap_get_header", Object: oid}
	}

	file.mu.RLock()
	defer file.mu.RUnlock()

	header, herr := c.pool.omaps.Header(trans.Locator)
	if herr != nil {
		return nil, omapErr("omap_get_header", oid, herr)
	}
	return header, nil
}

// OmapSetHeader replaces the object's header blob.
func (c *IoCtx) OmapSetHeader(oid string, header []byte) (err error) {
	defer func() { c.pool.observe("omap_set_header", err) }()
	if err := c.fencedErr("omap_set_header", oid); err != nil {
		return err
	}
	if err := c.readOnlyErr("omap_set_header", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("omap_set_header", oid, "len=%d", len(header))

	file, epoch := c.omapWriteFile(trans)

	file.mu.Lock()
	defer file.mu.Unlock()

	if serr := c.pool.omaps.SetHeader(trans.Locator, header); serr != nil {
		return omapErr("omap_set_header", oid, serr)
	}
	file.epoch = epoch
	return nil
}
