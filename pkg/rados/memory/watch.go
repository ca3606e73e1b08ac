package memory

import (
	"reflect"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/rados"
)

// RegisterHandler registers a removal-notification handler on the object.
// Handlers fire once, in registration order, when the object's head is
// removed; the removal clears the registration.
func (c *IoCtx) RegisterHandler(oid string, h rados.ObjectHandler) error {
	if err := c.fencedErr("register_handler", oid); err != nil {
		return err
	}

	loc := c.locator(oid)
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	c.pool.handlers[loc] = append(c.pool.handlers[loc], h)
	logger.Verb("register_handler", oid, "%d registered", len(c.pool.handlers[loc]))
	return nil
}

// UnregisterHandler removes a previously registered handler. Unknown
// handlers are ignored. Handlers are matched by interface identity;
// ObjectHandlerFunc values are matched by function pointer.
func (c *IoCtx) UnregisterHandler(oid string, h rados.ObjectHandler) error {
	if err := c.fencedErr("unregister_handler", oid); err != nil {
		return err
	}

	loc := c.locator(oid)
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()

	registered := c.pool.handlers[loc]
	for i, reg := range registered {
		if sameHandler(reg, h) {
			c.pool.handlers[loc] = append(registered[:i], registered[i+1:]...)
			break
		}
	}
	if len(c.pool.handlers[loc]) == 0 {
		delete(c.pool.handlers, loc)
	}
	return nil
}

// sameHandler compares two handlers without panicking on non-comparable
// dynamic types such as ObjectHandlerFunc.
func sameHandler(a, b rados.ObjectHandler) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return a == b
	}
	if va.Kind() == reflect.Func || vb.Kind() == reflect.Func {
		return va.Kind() == vb.Kind() && va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() || !vb.Type().Comparable() {
		return false
	}
	return a == b
}
