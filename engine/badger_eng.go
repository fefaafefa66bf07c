package engine

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/mem"
)

const (
	minBlockCache = 1024 * 1024 * 16
	maxBlockCache = 1024 * 1024 * 1024 * 2
)

type badgerEng struct {
	writerMutex sync.Mutex
	cfg         *EngConfig
	db          *badger.DB
	closed      int32
}

func setBadgerOptions(cfg *EngConfig) badger.Options {
	var opt badger.Options
	if cfg.InMemory {
		opt = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opt = badger.DefaultOptions(cfg.GetDataDir())
	}
	opt = opt.WithSyncWrites(cfg.SyncWrites)
	opt = opt.WithNumVersionsToKeep(1)
	opt = opt.WithBlockCacheSize(blockCacheSize(cfg))
	opt = opt.WithLogger(dbLog)
	return opt
}

// blockCacheSize uses about 1% of the host RAM if not configured.
func blockCacheSize(cfg *EngConfig) int64 {
	if cfg.BlockCacheSize > 0 {
		return cfg.BlockCacheSize
	}
	v, err := mem.VirtualMemory()
	if err != nil {
		return minBlockCache * 4
	}
	sz := int64(v.Total / 100)
	if sz < minBlockCache {
		sz = minBlockCache
	} else if sz > maxBlockCache {
		sz = maxBlockCache
	}
	return sz
}

func NewBadgerEng(cfg *EngConfig) (*badgerEng, error) {
	if !cfg.InMemory {
		if err := ensureDataDir(cfg); err != nil {
			return nil, err
		}
	}
	db, err := badger.Open(setBadgerOptions(cfg))
	if err != nil {
		return nil, err
	}
	dbLog.Infof("badger engine opened: %v, in memory: %v", cfg.GetDataDir(), cfg.InMemory)
	return &badgerEng{
		cfg: cfg,
		db:  db,
	}, nil
}

func (be *badgerEng) IsClosed() bool {
	return atomic.LoadInt32(&be.closed) == 1
}

func (be *badgerEng) CloseAll() {
	if !atomic.CompareAndSwapInt32(&be.closed, 0, 1) {
		return
	}
	be.writerMutex.Lock()
	defer be.writerMutex.Unlock()
	if err := be.db.Close(); err != nil {
		dbLog.Warningf("close badger engine %v failed: %v", be.cfg.GetDataDir(), err)
		return
	}
	dbLog.Infof("badger engine closed: %v", be.cfg.GetDataDir())
}

func (be *badgerEng) Get(key []byte) ([]byte, error) {
	if be.IsClosed() {
		return nil, errEngClosed
	}
	var v []byte
	err := be.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return v, err
}

func (be *badgerEng) NewWriteBatch() WriteBatch {
	return newOpsWriteBatch()
}

func (be *badgerEng) Write(wb WriteBatch) error {
	if be.IsClosed() {
		return errEngClosed
	}
	b, ok := wb.(*opsWriteBatch)
	if !ok {
		return errConfig
	}
	be.writerMutex.Lock()
	defer be.writerMutex.Unlock()
	txn := be.db.NewTransaction(true)
	defer func() {
		txn.Discard()
	}()
	for _, w := range b.ops {
		switch w.op {
		case DeleteRangeOp:
			keys, err := rangeKeys(txn, w.key, w.value)
			if err != nil {
				return err
			}
			for _, k := range keys {
				if txn, err = applyOp(be.db, txn, writeOp{op: DeleteOp, key: k}); err != nil {
					return err
				}
			}
		default:
			var err error
			if txn, err = applyOp(be.db, txn, w); err != nil {
				return err
			}
		}
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	b.Clear()
	return nil
}

// applyOp commits the pending writes and continues in a new transaction
// once the transaction is full.
func applyOp(db *badger.DB, txn *badger.Txn, w writeOp) (*badger.Txn, error) {
	err := setOp(txn, w)
	if err == badger.ErrTxnTooBig {
		if err = txn.Commit(); err != nil {
			return txn, err
		}
		txn = db.NewTransaction(true)
		err = setOp(txn, w)
	}
	return txn, err
}

func setOp(txn *badger.Txn, w writeOp) error {
	switch w.op {
	case PutOp:
		return txn.Set(w.key, w.value)
	case DeleteOp:
		return txn.Delete(w.key)
	}
	return nil
}

func rangeKeys(txn *badger.Txn, start, end []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()
	keys := make([][]byte, 0, 16)
	for it.Seek(start); it.Valid(); it.Next() {
		k := it.Item().KeyCopy(nil)
		if end != nil && bytes.Compare(k, end) >= 0 {
			break
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (be *badgerEng) GetIterator(opts IteratorOpts) (Iterator, error) {
	if be.IsClosed() {
		return nil, errEngClosed
	}
	return &badgerIterator{
		txn:        be.db.NewTransaction(false),
		lowerBound: copyBytes(opts.Min),
		upperBound: copyBytes(opts.Max),
	}, nil
}
