package engine

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/youzan/zangeo/common"
)

var dbLog = common.NewLevelLogger(common.LOG_INFO, common.NewGLogger())

func SetLogLevel(level int32) {
	dbLog.SetLevel(level)
}

func SetLogger(level int32, logger common.Logger) {
	dbLog.SetLevel(level)
	dbLog.Logger = logger
}

const (
	EngTypeMem    = "mem"
	EngTypeBadger = "badger"
)

var (
	errEngClosed  = errors.New("engine closed")
	errConfig     = errors.New("config error")
	errUnknownEng = errors.New("unknown engine type")
)

type EngConfig struct {
	DataDir    string `json:"data_dir"`
	EngineType string `json:"engine_type"`
	// for badger only, keep all data in memory without data dir
	InMemory   bool `json:"in_memory"`
	SyncWrites bool `json:"sync_writes"`
	// block cache of badger, 0 means sized by the host memory
	BlockCacheSize int64 `json:"block_cache_size"`
}

func NewEngConfig() *EngConfig {
	return &EngConfig{
		EngineType: EngTypeMem,
	}
}

func (cfg *EngConfig) GetDataDir() string {
	return path.Join(cfg.DataDir, cfg.EngineType)
}

// KVEngine is an ordered key value store. Iterators read a consistent
// snapshot of the store taken when they are created.
type KVEngine interface {
	Get(key []byte) ([]byte, error)
	NewWriteBatch() WriteBatch
	Write(wb WriteBatch) error
	// GetIterator returns an iterator limited to [min, max) of opts, nil
	// bounds are unlimited.
	GetIterator(opts IteratorOpts) (Iterator, error)
	IsClosed() bool
	CloseAll()
}

type WriteBatch interface {
	Put(key []byte, value []byte)
	Delete(key []byte)
	DeleteRange(start, end []byte)
	Count() int
	Clear()
}

func NewKVEngine(cfg *EngConfig) (KVEngine, error) {
	switch cfg.EngineType {
	case EngTypeMem, "":
		return NewMemEng(cfg)
	case EngTypeBadger:
		return NewBadgerEng(cfg)
	default:
		return nil, fmt.Errorf("%w: %v", errUnknownEng, cfg.EngineType)
	}
}

func ensureDataDir(cfg *EngConfig) error {
	if len(cfg.DataDir) == 0 {
		return errConfig
	}
	return os.MkdirAll(cfg.GetDataDir(), common.DIR_PERM)
}
