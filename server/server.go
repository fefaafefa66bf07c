// Package server serves the geo index over the redis protocol, with an
// http api for stats, metrics and runtime settings.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
	"github.com/youzan/zangeo/metric"
	"github.com/youzan/zangeo/numindex"
	"github.com/youzan/zangeo/search"
	"github.com/youzan/zangeo/settings"
)

var sLog = common.NewLevelLogger(common.LOG_INFO, common.NewDefaultLogger("server"))

func SetLogger(level int32, logger common.Logger) {
	sLog.SetLevel(level)
	sLog.Logger = logger
}

var errServerStarted = errors.New("server already started")

type Server struct {
	conf       *ServerConfig
	eng        engine.KVEngine
	idx        *numindex.NumericIndex
	searcher   *search.Searcher
	router     *common.CmdRouter
	httpRouter *httprouter.Router
	writeStats common.WriteStats
	startTime  time.Time
	started    int32
	stopC      chan struct{}
	wg         sync.WaitGroup
}

func NewServer(conf *ServerConfig) (*Server, error) {
	eng, err := engine.NewKVEngine(conf.engConfig())
	if err != nil {
		return nil, err
	}
	idx := numindex.NewNumericIndex(eng)
	searcher, err := search.NewSearcher(idx)
	if err != nil {
		eng.CloseAll()
		return nil, err
	}
	s := &Server{
		conf:      conf,
		eng:       eng,
		idx:       idx,
		searcher:  searcher,
		router:    common.NewCmdRouter(),
		startTime: time.Now(),
		stopC:     make(chan struct{}),
	}
	s.initDynamicConf()
	s.registerHandlers()
	s.initHttpHandler()
	return s, nil
}

// initDynamicConf loads the soft settings into the runtime settings and
// applies later changes to the query path.
func (s *Server) initDynamicConf() {
	common.SetIntDynamicConf(common.ConfSlowQueryMs, int(settings.Soft.SlowQueryMs))
	verify := 0
	if settings.Soft.VerifyInScan {
		verify = 1
	}
	common.SetIntDynamicConf(common.ConfVerifyInScan, verify)
	common.SetIntDynamicConf(common.ConfMaxRangeScanKeys, int(settings.Soft.MaxRangeScanKeys))
	common.SetIntDynamicConf(common.ConfMaxAddPoints, int(settings.Soft.MaxAddPoints))

	common.RegisterConfChangedHandler(common.ConfSlowQueryMs, func(nv interface{}) {
		if v, ok := nv.(int); ok {
			s.searcher.SetSlowQueryMs(int64(v))
		}
	})
	common.RegisterConfChangedHandler(common.ConfVerifyInScan, func(nv interface{}) {
		if v, ok := nv.(int); ok {
			s.searcher.SetVerifyInScan(v != 0)
		}
	})
	common.RegisterConfChangedHandler(common.ConfMaxRangeScanKeys, func(nv interface{}) {
		if v, ok := nv.(int); ok {
			s.idx.SetMaxScanKeys(v)
		}
	})
}

// Start begins serving the redis and the http api.
func (s *Server) Start() error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return errServerStarted
	}
	l, err := net.Listen("tcp", ":"+strconv.Itoa(s.conf.HttpAPIPort))
	if err != nil {
		return fmt.Errorf("listen http api port %v failed: %w", s.conf.HttpAPIPort, err)
	}
	sLog.Infof("server starting at %v, redis port %v, http port %v, engine %v",
		s.conf.broadcastAddr(), s.conf.RedisAPIPort, s.conf.HttpAPIPort, s.conf.engConfig().EngineType)
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.serveRedisAPI(s.conf.RedisAPIPort, s.stopC)
	}()
	go func() {
		defer s.wg.Done()
		s.serveHttpAPI(l, s.stopC)
	}()
	return nil
}

func (s *Server) Stop() {
	select {
	case <-s.stopC:
		return
	default:
	}
	close(s.stopC)
	s.wg.Wait()
	s.eng.CloseAll()
	sLog.Infof("server stopped")
}

func (s *Server) Searcher() *search.Searcher {
	return s.searcher
}

func (s *Server) GetStats() common.ServerStats {
	var ss common.ServerStats
	ss.EngType = s.conf.engConfig().EngineType
	ss.StartTime = s.startTime.Unix()
	ss.WriteStats = s.writeStats.Copy()
	if c := s.searcher.Cache(); c != nil {
		ss.RangeCacheLen = c.Len()
	}
	fields, err := s.idx.Fields()
	if err != nil {
		sLog.Warningf("get index fields failed: %v", err)
	}
	for _, f := range fields {
		cnt, err := s.idx.DocCount(f)
		if err != nil {
			sLog.Warningf("get doc count of %v failed: %v", f, err)
			continue
		}
		ss.FieldStats = append(ss.FieldStats, common.FieldStats{Name: f, DocNum: int64(cnt)})
	}
	return ss
}

type QueryStats struct {
	HotFields    []metric.TopNInfo   `json:"hot_fields"`
	LargeQueries []metric.LargeQuery `json:"large_queries"`
}

func (s *Server) GetQueryStats() QueryStats {
	return QueryStats{
		HotFields:    metric.TopnHotFields.GetTopNQueries(),
		LargeQueries: metric.LargeQueries.Top(),
	}
}

func (s *Server) serveHttpAPI(l net.Listener, stopC <-chan struct{}) {
	srv := &http.Server{
		Handler: s.httpRouter,
	}
	go func() {
		<-stopC
		srv.Close()
	}()
	err := srv.Serve(l)
	sLog.Infof("http server stopped: %v", err)
}
