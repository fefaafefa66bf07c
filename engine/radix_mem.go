package engine

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"
)

const (
	defaultTableName = "default"
)

type ritem struct {
	Key   string
	Value []byte
}

// memEng keeps the data in an immutable radix tree, readers iterate over a
// snapshot while the writer commits.
type memEng struct {
	writerMutex sync.Mutex
	cfg         *EngConfig
	memkv       *memdb.MemDB
	closed      int32
}

func NewMemEng(cfg *EngConfig) (*memEng, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			defaultTableName: &memdb.TableSchema{
				Name: defaultTableName,
				Indexes: map[string]*memdb.IndexSchema{
					"id": &memdb.IndexSchema{
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
		},
	}
	memkv, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	dbLog.Infof("mem engine opened")
	return &memEng{
		cfg:   cfg,
		memkv: memkv,
	}, nil
}

func (mi *memEng) CloseAll() {
	if atomic.CompareAndSwapInt32(&mi.closed, 0, 1) {
		dbLog.Infof("mem engine closed")
	}
}

func (mi *memEng) IsClosed() bool {
	return atomic.LoadInt32(&mi.closed) == 1
}

func (mi *memEng) Len() int64 {
	txn := mi.memkv.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(defaultTableName, "id")
	if err != nil {
		return 0
	}
	cnt := int64(0)
	for v := it.Next(); v != nil; v = it.Next() {
		cnt++
	}
	return cnt
}

func (mi *memEng) GetIterator(opts IteratorOpts) (Iterator, error) {
	if mi.IsClosed() {
		return nil, errEngClosed
	}
	return &radixIterator{
		miTxn:      mi.memkv.Txn(false),
		lowerBound: copyBytes(opts.Min),
		upperBound: copyBytes(opts.Max),
	}, nil
}

func (mi *memEng) Get(key []byte) ([]byte, error) {
	if mi.IsClosed() {
		return nil, errEngClosed
	}
	txn := mi.memkv.Txn(false)
	defer txn.Abort()

	v, err := txn.First(defaultTableName, "id", string(key))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	item := v.(*ritem)
	if string(key) == item.Key {
		return item.Value, nil
	}
	return nil, nil
}

func (mi *memEng) NewWriteBatch() WriteBatch {
	return newOpsWriteBatch()
}

func (mi *memEng) Write(wb WriteBatch) error {
	if mi.IsClosed() {
		return errEngClosed
	}
	b, ok := wb.(*opsWriteBatch)
	if !ok {
		return errConfig
	}
	mi.writerMutex.Lock()
	defer mi.writerMutex.Unlock()
	txn := mi.memkv.Txn(true)
	for _, w := range b.ops {
		var err error
		switch w.op {
		case PutOp:
			err = txn.Insert(defaultTableName, &ritem{Key: string(w.key), Value: w.value})
		case DeleteOp:
			err = txn.Delete(defaultTableName, &ritem{Key: string(w.key)})
			if err == memdb.ErrNotFound {
				err = nil
			}
		case DeleteRangeOp:
			err = mi.deleteRange(txn, w.key, w.value)
		}
		if err != nil {
			txn.Abort()
			return err
		}
	}
	txn.Commit()
	b.Clear()
	return nil
}

func (mi *memEng) deleteRange(txn *memdb.Txn, start, end []byte) error {
	resIter, err := txn.LowerBound(defaultTableName, "id", string(start))
	if err != nil {
		return err
	}
	keys := make([]string, 0, 16)
	for v := resIter.Next(); v != nil; v = resIter.Next() {
		item := v.(*ritem)
		if end != nil && bytes.Compare([]byte(item.Key), end) >= 0 {
			break
		}
		keys = append(keys, item.Key)
	}
	for _, k := range keys {
		if err := txn.Delete(defaultTableName, &ritem{Key: k}); err != nil && err != memdb.ErrNotFound {
			return err
		}
	}
	return nil
}
