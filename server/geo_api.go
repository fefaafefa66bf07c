package server

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/absolute8511/redcon"
	"github.com/youzan/zangeo/common"
	"github.com/youzan/zangeo/geo"
	"github.com/youzan/zangeo/index"
	"github.com/youzan/zangeo/metric"
	"github.com/youzan/zangeo/search"
	"github.com/youzan/zangeo/slow"
)

var (
	errInvalidCoord   = errors.New("invalid longitude,latitude pair")
	errTooManyPoints  = errors.New("too many points in one command")
	errSyntax         = errors.New("syntax error")
	errOddParams      = errors.New("PARAMS needs name value pairs")
	errInvalidDocID   = errors.New("invalid document id")
	errDuplicateParam = errors.New("duplicated parameter")
)

func (s *Server) registerHandlers() {
	s.router.Register(true, "geoidx.add", s.geoAddCommand)
	s.router.Register(true, "geoidx.del", s.geoDelCommand)
	s.router.Register(false, "geoidx.pos", s.geoPosCommand)
	s.router.Register(false, "geoidx.hash", s.geoHashCommand)
	s.router.Register(false, "geoidx.dist", s.geoDistCommand)
	s.router.Register(false, "geoidx.count", s.geoCountCommand)
	s.router.Register(false, "geoidx.radius", s.geoRadiusCommand)
	s.router.Register(false, "geoidx.box", s.geoBoxCommand)
}

func writeErr(conn redcon.Conn, err error) {
	conn.WriteError("ERR " + err.Error())
}

func writeArgCountErr(conn redcon.Conn, cmd redcon.Command) {
	conn.WriteError("ERR wrong number of arguments for '" + strings.ToLower(string(cmd.Args[0])) + "' command")
}

func readDocID(ac *common.ArgsCursor) (index.DocID, error) {
	id, err := ac.GetUint64()
	if err != nil {
		return 0, errInvalidDocID
	}
	return index.DocID(id), nil
}

func parseDocID(b []byte) (index.DocID, error) {
	return readDocID(common.NewArgsCursor([][]byte{b}))
}

// GEOIDX.ADD field docid lon lat [lon lat ...]
// replaces the points of the document and replies the number of points.
func (s *Server) geoAddCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) < 5 || (len(cmd.Args)-3)%2 != 0 {
		writeArgCountErr(conn, cmd)
		return
	}
	start := time.Now()
	field := string(cmd.Args[1])
	id, err := parseDocID(cmd.Args[2])
	if err != nil {
		writeErr(conn, err)
		return
	}
	points := (len(cmd.Args) - 3) / 2
	if maxPoints := common.GetIntDynamicConf(common.ConfMaxAddPoints); maxPoints > 0 && points > maxPoints {
		writeErr(conn, errTooManyPoints)
		return
	}
	ac := common.NewArgsCursor(cmd.Args[3:])
	hashes := make([]float64, 0, points)
	for !ac.IsAtEnd() {
		lon, err := ac.GetDouble()
		if err != nil {
			writeErr(conn, errInvalidCoord)
			return
		}
		lat, err := ac.GetDouble()
		if err != nil {
			writeErr(conn, errInvalidCoord)
			return
		}
		h := geo.CalcGeoHash(lon, lat)
		if h == geo.InvalidGeoHash {
			writeErr(conn, errInvalidCoord)
			return
		}
		hashes = append(hashes, h)
	}
	if err := s.idx.Add(field, id, hashes...); err != nil {
		metric.ErrorCnt.WithLabelValues(field, "geo_add").Inc()
		writeErr(conn, err)
		return
	}
	cost := time.Since(start)
	metric.WriteLatency.WithLabelValues(field).Observe(float64(cost.Milliseconds()))
	s.writeStats.UpdateWriteStats(int64(points), cost.Microseconds())
	slow.LogSlowIndexWrite(cost, slow.NewSlowLogInfo(field, string(cmd.Args[2]), fmt.Sprintf("points %v", points)))
	conn.WriteInt(points)
}

// GEOIDX.DEL field docid
func (s *Server) geoDelCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		writeArgCountErr(conn, cmd)
		return
	}
	id, err := parseDocID(cmd.Args[2])
	if err != nil {
		writeErr(conn, err)
		return
	}
	removed, err := s.idx.Remove(string(cmd.Args[1]), id)
	if err != nil {
		writeErr(conn, err)
		return
	}
	if removed {
		metric.EventCnt.WithLabelValues(string(cmd.Args[1]), "doc_removed").Inc()
		conn.WriteInt(1)
	} else {
		conn.WriteInt(0)
	}
}

// GEOIDX.POS field docid
// replies the lon lat pairs of the document.
func (s *Server) geoPosCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		writeArgCountErr(conn, cmd)
		return
	}
	id, err := parseDocID(cmd.Args[2])
	if err != nil {
		writeErr(conn, err)
		return
	}
	values, err := s.idx.Values(string(cmd.Args[1]), id)
	if err != nil {
		writeErr(conn, err)
		return
	}
	conn.WriteArray(len(values))
	for _, v := range values {
		lon, lat, ok := geo.DecodeGeoHash(v)
		if !ok {
			conn.WriteNull()
			continue
		}
		conn.WriteArray(2)
		conn.WriteBulkString(strconv.FormatFloat(lon, 'f', -1, 64))
		conn.WriteBulkString(strconv.FormatFloat(lat, 'f', -1, 64))
	}
}

// GEOIDX.HASH field docid
// replies the standard geohash strings of the document points.
func (s *Server) geoHashCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 3 {
		writeArgCountErr(conn, cmd)
		return
	}
	id, err := parseDocID(cmd.Args[2])
	if err != nil {
		writeErr(conn, err)
		return
	}
	values, err := s.idx.Values(string(cmd.Args[1]), id)
	if err != nil {
		writeErr(conn, err)
		return
	}
	conn.WriteArray(len(values))
	for _, v := range values {
		h, ok := geo.GeoHashString(v)
		if !ok {
			conn.WriteNull()
			continue
		}
		conn.WriteBulkString(h)
	}
}

// GEOIDX.DIST field docid docid [m|km|ft|mi]
// replies the shortest distance between the points of two documents, in
// meters by default, or nil if one of them has no point.
func (s *Server) geoDistCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 4 && len(cmd.Args) != 5 {
		writeArgCountErr(conn, cmd)
		return
	}
	field := string(cmd.Args[1])
	ac := common.NewArgsCursor(cmd.Args[2:])
	id1, err := readDocID(ac)
	if err != nil {
		writeErr(conn, err)
		return
	}
	id2, err := readDocID(ac)
	if err != nil {
		writeErr(conn, err)
		return
	}
	unit := geo.DistanceM
	if !ac.IsAtEnd() {
		u, _ := ac.GetString()
		if unit = geo.ParseDistanceUnit(u); unit == geo.DistanceInvalid {
			writeErr(conn, common.NewQueryError(common.QueryErrUnknownUnit, "Unknown distance unit %s", u))
			return
		}
	}
	values1, err := s.idx.Values(field, id1)
	if err != nil {
		writeErr(conn, err)
		return
	}
	values2, err := s.idx.Values(field, id2)
	if err != nil {
		writeErr(conn, err)
		return
	}
	dist := math.Inf(1)
	for _, v1 := range values1 {
		for _, v2 := range values2 {
			if d, ok := geo.HashDistance(v1, v2); ok && d < dist {
				dist = d
			}
		}
	}
	if math.IsInf(dist, 1) {
		conn.WriteNull()
		return
	}
	conn.WriteBulkString(strconv.FormatFloat(dist/unit.Factor(), 'f', 4, 64))
}

// GEOIDX.COUNT field
func (s *Server) geoCountCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) != 2 {
		writeArgCountErr(conn, cmd)
		return
	}
	cnt, err := s.idx.DocCount(string(cmd.Args[1]))
	if err != nil {
		writeErr(conn, err)
		return
	}
	conn.WriteInt(cnt)
}

type queryOpts struct {
	withDist bool
	params   map[string]string
}

// parseQueryOpts reads [WITHDIST] [PARAMS nargs name value ...].
func parseQueryOpts(ac *common.ArgsCursor, allowDist bool) (*queryOpts, error) {
	opts := &queryOpts{}
	for !ac.IsAtEnd() {
		opt, _ := ac.GetString()
		switch strings.ToUpper(opt) {
		case "WITHDIST":
			if !allowDist {
				return nil, errSyntax
			}
			opts.withDist = true
		case "PARAMS":
			n, err := ac.GetInt64()
			if err != nil || n < 0 || int(n) > ac.NumRemaining() {
				return nil, errSyntax
			}
			if n%2 != 0 {
				return nil, errOddParams
			}
			if opts.params == nil {
				opts.params = make(map[string]string, n/2)
			}
			for i := int64(0); i < n; i += 2 {
				k, _ := ac.GetString()
				v, _ := ac.GetString()
				if _, ok := opts.params[k]; ok {
					return nil, errDuplicateParam
				}
				opts.params[k] = v
			}
		default:
			return nil, errSyntax
		}
	}
	return opts, nil
}

// GEOIDX.RADIUS field lon lat radius m|km|ft|mi [WITHDIST] [PARAMS nargs name value ...]
// replies the matched document ids, with the distance in the unit of the
// radius if asked.
func (s *Server) geoRadiusCommand(conn redcon.Conn, cmd redcon.Command) {
	ac := common.NewArgsCursor(cmd.Args[1:])
	gf, err := geo.Parse(ac)
	if err != nil {
		writeErr(conn, err)
		return
	}
	defer gf.Free()
	s.doGeoQuery(conn, gf, ac, true)
}

// GEOIDX.BOX field lon lat lon lat [PARAMS nargs name value ...]
func (s *Server) geoBoxCommand(conn redcon.Conn, cmd redcon.Command) {
	ac := common.NewArgsCursor(cmd.Args[1:])
	gf, err := geo.ParseBox(ac)
	if err != nil {
		writeErr(conn, err)
		return
	}
	defer gf.Free()
	s.doGeoQuery(conn, gf, ac, false)
}

func (s *Server) doGeoQuery(conn redcon.Conn, gf *geo.GeoFilter, ac *common.ArgsCursor, allowDist bool) {
	opts, err := parseQueryOpts(ac, allowDist)
	if err != nil {
		writeErr(conn, err)
		return
	}
	if opts.params != nil {
		if err := gf.EvalParams(opts.params); err != nil {
			writeErr(conn, err)
			return
		}
	}
	res, err := s.searcher.Search(gf, opts.withDist)
	if err != nil {
		metric.ErrorCnt.WithLabelValues(gf.Property, "geo_query").Inc()
		writeErr(conn, err)
		return
	}
	writeSearchResult(conn, gf, res, opts.withDist)
}

func writeSearchResult(conn redcon.Conn, gf *geo.GeoFilter, res *search.Result, withDist bool) {
	conn.WriteArray(int(res.Matches.GetCardinality()))
	it := res.Matches.Iterator()
	for it.HasNext() {
		id := it.Next()
		idStr := strconv.FormatUint(id, 10)
		if !withDist {
			conn.WriteBulkString(idStr)
			continue
		}
		conn.WriteArray(2)
		conn.WriteBulkString(idStr)
		dist := res.Distances[id] / gf.Unit.Factor()
		conn.WriteBulkString(strconv.FormatFloat(dist, 'f', 4, 64))
	}
}
