package rados

// Transaction is the per-operation state threaded through the engine and
// handed to class-method dispatch. It binds the target Locator with a
// write-intent hint.
//
// WriteIntent escalates read-path locking: a verb that would normally take
// the pool's shared lock takes the exclusive lock instead and advances the
// pool epoch, matching the production cluster's behavior for read verbs
// embedded in a write operation.
type Transaction struct {
	Locator Locator

	// WriteIntent marks the transaction as part of a mutating operation.
	WriteIntent bool
}

// NewTransaction builds a read transaction for the given locator.
func NewTransaction(loc Locator) *Transaction {
	return &Transaction{Locator: loc}
}
