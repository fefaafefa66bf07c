package engine

type wop int

const (
	NotOp wop = iota
	DeleteOp
	PutOp
	DeleteRangeOp
)

type writeOp struct {
	op    wop
	key   []byte
	value []byte
}

// opsWriteBatch records the operations to be applied by the engine in one
// transaction.
type opsWriteBatch struct {
	ops []writeOp
}

func newOpsWriteBatch() *opsWriteBatch {
	return &opsWriteBatch{
		ops: make([]writeOp, 0, 10),
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	nb := make([]byte, len(b))
	copy(nb, b)
	return nb
}

func (wb *opsWriteBatch) Put(key []byte, value []byte) {
	wb.ops = append(wb.ops, writeOp{op: PutOp, key: copyBytes(key), value: copyBytes(value)})
}

func (wb *opsWriteBatch) Delete(key []byte) {
	wb.ops = append(wb.ops, writeOp{op: DeleteOp, key: copyBytes(key)})
}

// DeleteRange deletes the keys in [start, end), a nil end is unlimited.
func (wb *opsWriteBatch) DeleteRange(start, end []byte) {
	wb.ops = append(wb.ops, writeOp{op: DeleteRangeOp, key: copyBytes(start), value: copyBytes(end)})
}

func (wb *opsWriteBatch) Count() int {
	return len(wb.ops)
}

func (wb *opsWriteBatch) Clear() {
	wb.ops = wb.ops[:0]
}
