package memory

import (
	"bytes"
	"strconv"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// SetXattr stores a named attribute on the object. Attribute state lives
// beside the revision chain: it is not versioned by snapshots.
func (c *IoCtx) SetXattr(oid, name string, value []byte) error {
	if err := c.fencedErr("setxattr", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("setxattr", oid, "name=%s len=%d", name, len(value))

	return c.poolOp(trans, true, func(p *Pool) error {
		attrs := p.xattrs[trans.Locator]
		if attrs == nil {
			attrs = make(map[string][]byte)
			p.xattrs[trans.Locator] = attrs
		}
		attrs[name] = cloneBytes(value)
		return nil
	})
}

// RmXattr removes a named attribute; missing attributes are ignored.
func (c *IoCtx) RmXattr(oid, name string) error {
	if err := c.fencedErr("rmxattr", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)
	logger.Verb("rmxattr", oid, "name=%s", name)

	return c.poolOp(trans, true, func(p *Pool) error {
		delete(p.xattrs[trans.Locator], name)
		return nil
	})
}

// GetXattrs returns a copy of the object's attribute map, empty when the
// object carries none.
func (c *IoCtx) GetXattrs(oid string) (map[string][]byte, error) {
	if err := c.fencedErr("getxattrs", oid); err != nil {
		return nil, err
	}

	trans := c.transaction(oid)

	out := make(map[string][]byte)
	err := c.poolOp(trans, false, func(p *Pool) error {
		for name, value := range p.xattrs[trans.Locator] {
			out[name] = cloneBytes(value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cmpxattr compares the caller's value v against the named attribute
// decoded as a base-10 integer, with v as the left operand. A missing
// attribute fails with CodeNoData, an empty attribute decodes as zero, an
// unparsable one fails with CodeInvalidArgument, and a false comparison
// fails with CodeComparisonFailed.
func (c *IoCtx) Cmpxattr(oid, name string, op rados.CompareOp, v uint64) error {
	if err := c.fencedErr("cmpxattr", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	value, ok := c.pool.xattrs[trans.Locator][name]
	if !ok {
		return &rados.Error{Code: rados.CodeNoData, Op: "cmpxattr", Object: oid}
	}

	var attrVal uint64
	if len(value) > 0 {
		parsed, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return &rados.Error{Code: rados.CodeInvalidArgument, Op: "cmpxattr", Object: oid}
		}
		attrVal = uint64(parsed)
	}

	logger.Verb("cmpxattr", oid, "name=%s op=%s attr=%d v=%d", name, op, attrVal, v)

	match, known := rados.CompareInts(op, v, attrVal)
	if !known {
		return &rados.Error{Code: rados.CodeInvalidArgument, Op: "cmpxattr", Object: oid}
	}
	if !match {
		return &rados.Error{Code: rados.CodeComparisonFailed, Op: "cmpxattr", Object: oid}
	}
	return nil
}

// CmpxattrStr compares the caller's value against the named attribute's
// raw bytes under lexicographic order, with the caller's value as the left
// operand.
func (c *IoCtx) CmpxattrStr(oid, name string, op rados.CompareOp, v []byte) error {
	if err := c.fencedErr("cmpxattr_str", oid); err != nil {
		return err
	}

	trans := c.transaction(oid)

	c.pool.mu.RLock()
	defer c.pool.mu.RUnlock()

	value, ok := c.pool.xattrs[trans.Locator][name]
	if !ok {
		return &rados.Error{Code: rados.CodeNoData, Op: "cmpxattr_str", Object: oid}
	}

	match, known := rados.CompareBytes(op, bytes.Compare(v, value))
	if !known {
		return &rados.Error{Code: rados.CodeInvalidArgument, Op: "cmpxattr_str", Object: oid}
	}
	if !match {
		return &rados.Error{Code: rados.CodeComparisonFailed, Op: "cmpxattr_str", Object: oid}
	}
	return nil
}
