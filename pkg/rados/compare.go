package rados

// CompareOp selects the comparison applied by cmpxattr verbs. The caller's
// value is always the left operand: CompareGT succeeds when the supplied
// value is greater than the stored attribute.
type CompareOp uint8

const (
	CompareEQ CompareOp = iota + 1
	CompareNE
	CompareGT
	CompareGTE
	CompareLT
	CompareLTE
)

// Valid reports whether op names a known comparison.
func (op CompareOp) Valid() bool {
	return op >= CompareEQ && op <= CompareLTE
}

func (op CompareOp) String() string {
	switch op {
	case CompareEQ:
		return "eq"
	case CompareNE:
		return "ne"
	case CompareGT:
		return "gt"
	case CompareGTE:
		return "gte"
	case CompareLT:
		return "lt"
	case CompareLTE:
		return "lte"
	}
	return "invalid"
}

// CompareInts applies op to (v, attr) with v as the left operand.
func CompareInts(op CompareOp, v, attr uint64) (bool, bool) {
	switch op {
	case CompareEQ:
		return v == attr, true
	case CompareNE:
		return v != attr, true
	case CompareGT:
		return v > attr, true
	case CompareGTE:
		return v >= attr, true
	case CompareLT:
		return v < attr, true
	case CompareLTE:
		return v <= attr, true
	}
	return false, false
}

// CompareBytes applies op to (v, attr) under lexicographic byte order, with
// v as the left operand. cmp is the result of bytes.Compare(v, attr).
func CompareBytes(op CompareOp, cmp int) (bool, bool) {
	switch op {
	case CompareEQ:
		return cmp == 0, true
	case CompareNE:
		return cmp != 0, true
	case CompareGT:
		return cmp > 0, true
	case CompareGTE:
		return cmp >= 0, true
	case CompareLT:
		return cmp < 0, true
	case CompareLTE:
		return cmp <= 0, true
	}
	return false, false
}
