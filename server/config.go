package server

import (
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
)

type ServerConfig struct {
	DataDir        string `flag:"data-dir" cfg:"data_dir" json:"data_dir"`
	EngineType     string `flag:"engine-type" cfg:"engine_type" json:"engine_type"`
	InMemory       bool   `flag:"in-memory" cfg:"in_memory" json:"in_memory"`
	SyncWrites     bool   `flag:"sync-writes" cfg:"sync_writes" json:"sync_writes"`
	BlockCacheSize int64  `flag:"block-cache-size" cfg:"block_cache_size" json:"block_cache_size"`

	BroadcastAddr      string `flag:"broadcast-address" cfg:"broadcast_address" json:"broadcast_address"`
	BroadcastInterface string `flag:"broadcast-interface" cfg:"broadcast_interface" json:"broadcast_interface"`
	RedisAPIPort       int    `flag:"redis-api-port" cfg:"redis_api_port" json:"redis_api_port"`
	HttpAPIPort        int    `flag:"http-api-port" cfg:"http_api_port" json:"http_api_port"`

	LogLevel int32  `flag:"log-level" cfg:"log_level" json:"log_level"`
	LogDir   string `flag:"log-dir" cfg:"log_dir" json:"log_dir"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		EngineType:   engine.EngTypeMem,
		RedisAPIPort: 13381,
		HttpAPIPort:  13380,
		LogLevel:     common.LOG_INFO,
	}
}

func (conf *ServerConfig) engConfig() *engine.EngConfig {
	cfg := engine.NewEngConfig()
	cfg.DataDir = conf.DataDir
	if conf.EngineType != "" {
		cfg.EngineType = conf.EngineType
	}
	cfg.InMemory = conf.InMemory
	cfg.SyncWrites = conf.SyncWrites
	cfg.BlockCacheSize = conf.BlockCacheSize
	return cfg
}

// broadcastAddr is the configured address or the ip of the broadcast
// interface.
func (conf *ServerConfig) broadcastAddr() string {
	if conf.BroadcastAddr != "" {
		return conf.BroadcastAddr
	}
	if conf.BroadcastInterface != "" {
		return common.GetIPv4ForInterfaceName(conf.BroadcastInterface)
	}
	return ""
}
