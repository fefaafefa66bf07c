package server

import (
	"encoding/json"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/absolute8511/redcon"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/metric"
)

func (s *Server) serverRedis(conn redcon.Conn, cmd redcon.Command) {
	defer func() {
		if e := recover(); e != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			buf = buf[0:n]
			sLog.Infof("handle redis command %v panic: %s:%v", string(cmd.Args[0]), buf, e)
			conn.Close()
		}
	}()

	cmdName := strings.ToLower(string(cmd.Args[0]))
	switch cmdName {
	case "ping":
		conn.WriteString("PONG")
	case "quit":
		conn.WriteString("OK")
		conn.Close()
	case "info":
		info := struct {
			Stats common.ServerStats `json:"stats"`
			Query QueryStats         `json:"query"`
		}{s.GetStats(), s.GetQueryStats()}
		d, _ := json.MarshalIndent(info, "", " ")
		conn.WriteBulkString(string(d))
	default:
		var start time.Time
		level := common.GetIntDynamicConf(common.ConfCostStatsLevel)
		if level > 0 {
			start = time.Now()
		}
		h, _, ok := s.router.GetCmdHandler(cmdName)
		if !ok {
			metric.ErrorCnt.WithLabelValues("", "unknown_command").Inc()
			conn.WriteError("ERR unknown command '" + string(cmd.Args[0]) + "'")
			return
		}
		h(conn, cmd)
		if level > 0 {
			cost := time.Since(start)
			if cost >= time.Second ||
				(level > 1 && cost > time.Millisecond*500) ||
				(level > 2 && cost > time.Millisecond*100) ||
				(level > 3 && cost > time.Millisecond) ||
				(level > 4) {
				sLog.Infof("slow command %v cost %v", cmdString(cmd, level), cost)
			}
		}
	}
}

func cmdString(cmd redcon.Command, level int) string {
	cmdStr := string(cmd.Args[0])
	if len(cmd.Args) > 1 {
		cmdStr += ", " + string(cmd.Args[1])
		if level > 4 && len(cmd.Args) > 2 {
			for _, arg := range cmd.Args[2:] {
				cmdStr += "," + string(arg)
			}
		}
	}
	return cmdStr
}

func (s *Server) serveRedisAPI(port int, stopC <-chan struct{}) {
	redisS := redcon.NewServer(
		":"+strconv.Itoa(port),
		s.serverRedis,
		func(conn redcon.Conn) bool {
			return true
		},
		func(conn redcon.Conn, err error) {
			if err != nil {
				sLog.Debugf("closed: %s, err: %v", conn.RemoteAddr(), err)
			}
		},
	)
	go func() {
		err := redisS.ListenAndServe()
		if err != nil {
			sLog.Errorf("failed to start the redis server: %v", err)
		}
	}()
	<-stopC
	redisS.Close()
	sLog.Infof("redis api server exit")
}
