package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/engine"
	"github.com/youzan/zangeo/geo"
	"github.com/youzan/zangeo/metric"
	"github.com/youzan/zangeo/numindex"
	"github.com/youzan/zangeo/search"
	"github.com/youzan/zangeo/slow"
)

func (s *Server) pingHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	return "OK", nil
}

func (s *Server) doInfo(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	return s.GetStats(), nil
}

func (s *Server) doStats(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	return s.GetQueryStats(), nil
}

func (s *Server) doPurgeCache(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	if c := s.searcher.Cache(); c != nil {
		c.Purge()
	}
	metric.EventCnt.WithLabelValues("", "range_cache_purged").Inc()
	return nil, nil
}

func (s *Server) doSetLogLevel(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	reqParams, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_REQUEST"}
	}
	levelStr := reqParams.Get("loglevel")
	if levelStr == "" {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "MISSING_ARG_LEVEL"}
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "BAD_LEVEL_STRING"}
	}
	l := int32(level)
	mode := reqParams.Get("logmode")
	switch mode {
	case "":
		sLog.SetLevel(l)
		geo.SetLogLevel(l)
		search.SetLogLevel(l)
		numindex.SetLogLevel(l)
		engine.SetLogLevel(l)
	case "server":
		sLog.SetLevel(l)
	case "geo":
		geo.SetLogLevel(l)
	case "search":
		search.SetLogLevel(l)
	case "index":
		numindex.SetLogLevel(l)
	case "db":
		engine.SetLogLevel(l)
	case "slow":
		slow.ChangeSlowLogLevel(level)
	default:
		return nil, common.HttpErr{Code: http.StatusBadRequest,
			Text: "unknown log mode, available(server,geo,search,index,db,slow)"}
	}
	sLog.Infof("log level of %v set to %v", mode, level)
	return nil, nil
}

func (s *Server) doSetDynamicConf(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	reqParams, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_REQUEST"}
	}
	paramT := reqParams.Get("type")
	paramKey := reqParams.Get("key")
	paramV := reqParams.Get("value")
	if paramT == "int" {
		n, err := strconv.Atoi(paramV)
		if err != nil {
			return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_ARG"}
		}
		if !common.IsIntDynamicConf(paramKey) {
			return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_ARG: unknown int conf " + paramKey}
		}
		common.SetIntDynamicConf(paramKey, n)
	} else if paramT == "str" {
		common.SetStrDynamicConf(paramKey, paramV)
	} else {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_ARG: param type should be int/str"}
	}
	sLog.Infof("conf %v changed to : %v", paramKey, paramV)
	return nil, nil
}

func (s *Server) doGetDynamicConf(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
	reqParams, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_REQUEST"}
	}
	paramT := reqParams.Get("type")
	paramKey := reqParams.Get("key")
	switch paramT {
	case "int":
		return struct {
			Key   string `json:"key"`
			Value int    `json:"value"`
		}{paramKey, common.GetIntDynamicConf(paramKey)}, nil
	case "str":
		return struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}{paramKey, common.GetStrDynamicConf(paramKey)}, nil
	case "":
		return common.DumpDynamicConf(), nil
	default:
		return nil, common.HttpErr{Code: http.StatusBadRequest, Text: "INVALID_ARG: param type should be int/str"}
	}
}

func (s *Server) initHttpHandler() {
	log := common.HttpLog(sLog, common.LOG_DEBUG)
	router := httprouter.New()
	router.Handle("GET", common.APIPing, common.Decorate(s.pingHandler, common.PlainText))
	router.Handle("GET", common.APIInfo, common.Decorate(s.doInfo, common.V1))
	router.Handle("GET", common.APIStats, common.Decorate(s.doStats, common.V1))
	router.Handle("POST", common.APIPurgeCache, common.Decorate(s.doPurgeCache, common.V1, log))
	router.Handle("POST", common.APISetLogLevel, common.Decorate(s.doSetLogLevel, common.V1, log))
	router.Handle("POST", common.APISetConf, common.Decorate(s.doSetDynamicConf, common.V1, log))
	router.Handle("GET", common.APIGetConf, common.Decorate(s.doGetDynamicConf, common.V1))
	router.Handler("GET", common.APIMetrics, promhttp.Handler())
	s.httpRouter = router
}
