package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/absolute8511/glog"
	"github.com/judwhite/go-svc/svc"
	"github.com/mreiferson/go-options"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
	"github.com/youzan/zangeo/geo"
	"github.com/youzan/zangeo/numindex"
	"github.com/youzan/zangeo/search"
	"github.com/youzan/zangeo/server"
	"github.com/youzan/zangeo/slow"
)

var (
	flagSet = flag.NewFlagSet("zangeo", flag.ExitOnError)

	config      = flagSet.String("config", "", "path to config file")
	showVersion = flagSet.Bool("version", false, "print version string")

	dataDir        = flagSet.String("data-dir", "", "directory of the index data")
	engineType     = flagSet.String("engine-type", engine.EngTypeMem, "index engine, mem or badger")
	inMemory       = flagSet.Bool("in-memory", false, "keep the badger data in memory only")
	syncWrites     = flagSet.Bool("sync-writes", false, "sync badger writes to disk")
	blockCacheSize = flagSet.Int64("block-cache-size", 0, "badger block cache size, 0 means sized by the host memory")

	broadcastAddress   = flagSet.String("broadcast-address", "", "address of this node")
	broadcastInterface = flagSet.String("broadcast-interface", "", "interface to get the address of this node")
	redisAPIPort       = flagSet.Int("redis-api-port", 13381, "<port> of the redis api")
	httpAPIPort        = flagSet.Int("http-api-port", 13380, "<port> of the http api")

	logLevel = flagSet.Int("log-level", int(common.LOG_INFO), "log verbose level")
	logDir   = flagSet.String("log-dir", "", "directory for log file")
)

type program struct {
	server *server.Server
}

func main() {
	defer glog.Flush()
	prg := &program{}
	if err := svc.Run(prg, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGINT); err != nil {
		log.Fatal(err)
	}
}

func (p *program) Init(env svc.Environment) error {
	if env.IsWindowsService() {
		dir := filepath.Dir(os.Args[0])
		return os.Chdir(dir)
	}
	return nil
}

func loadConfig(fs *flag.FlagSet, configFile string) (*server.ServerConfig, error) {
	var cfg map[string]interface{}
	if configFile != "" {
		_, err := toml.DecodeFile(configFile, &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s - %v", configFile, err)
		}
	}
	opts := server.NewServerConfig()
	options.Resolve(opts, fs, cfg)
	return opts, nil
}

func initLoggers(level int32) {
	server.SetLogger(level, common.NewGLogger())
	search.SetLogger(level, common.NewGLogger())
	geo.SetLogger(level, common.NewGLogger())
	numindex.SetLogger(level, common.NewGLogger())
	engine.SetLogger(level, common.NewGLogger())
	slow.SetLogger(level, common.NewGLogger())
}

func (p *program) Start() error {
	glog.InitWithFlag(flagSet)
	flagSet.Parse(os.Args[1:])

	fmt.Println(common.VerString("zangeo"))
	if *showVersion {
		os.Exit(0)
	}

	opts, err := loadConfig(flagSet, *config)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	common.InitDefaultForGLogger(opts.LogDir)
	initLoggers(opts.LogLevel)

	loadConf, _ := json.MarshalIndent(opts, "", " ")
	fmt.Printf("loading with conf:%v\n", string(loadConf))

	app, err := server.NewServer(opts)
	if err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		app.Stop()
		return err
	}
	p.server = app
	return nil
}

func (p *program) Stop() error {
	if p.server != nil {
		p.server.Stop()
	}
	return nil
}
