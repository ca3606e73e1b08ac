package rados

// MethodContext carries the state the engine hands to class-method
// dispatch: the target object, the caller's read snapshot and snapshot
// context, and the transaction state so nested verbs issued by the method
// share the caller's write intent.
type MethodContext struct {
	Locator     Locator
	SnapID      SnapID
	SnapContext SnapContext
	Transaction *Transaction
}

// ClassHandler dispatches extended "exec" operations. The engine does not
// load or register methods; it calls out with the method context and input
// payload and receives a result code plus output bytes.
//
// A handler returning a negative code fails the exec verb with that code.
// Implementations are supplied at cluster construction (no process-wide
// registry).
type ClassHandler interface {
	Call(class, method string, ctx *MethodContext, in []byte) (out []byte, code int)
}

// ObjectHandler receives in-process removal notifications. Handlers are
// registered per Locator and fire once, when the object's head revision is
// removed; registration does not survive the removal.
type ObjectHandler interface {
	HandleRemoved(loc Locator)
}

// ObjectHandlerFunc adapts a function to the ObjectHandler interface.
type ObjectHandlerFunc func(loc Locator)

func (f ObjectHandlerFunc) HandleRemoved(loc Locator) { f(loc) }
