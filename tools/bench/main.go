package main

import (
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absolute8511/redigo/redis"
)

var ip = flag.String("ip", "127.0.0.1", "redis api ip")
var port = flag.Int("port", 13381, "redis api port")
var number = flag.Int("n", 1000, "request number")
var clients = flag.Int("c", 50, "number of clients")
var round = flag.Int("r", 1, "benchmark round number")
var tests = flag.String("t", "add,radius,box,pos,del", "only run the comma separated list of tests")
var docCnt = flag.Int("docs", 10000, "document count")
var points = flag.Int("points", 1, "points of one document")
var field = flag.String("field", "bench_loc", "the geo field to write")
var centerLon = flag.Float64("lon", 13.361389, "longitude of the area center")
var centerLat = flag.Float64("lat", 38.115556, "latitude of the area center")
var spread = flag.Float64("spread", 1, "max degrees away from the center")
var radiusKM = flag.Float64("radius", 10, "radius in km of the radius queries")
var wg sync.WaitGroup

var loop int
var latencyDistribute []int64

func init() {
	latencyDistribute = make([]int64, 32)
}

// latencyIndex buckets by 10ms below 100ms, by 100ms below 1s and by
// second above.
func latencyIndex(cost time.Duration) int {
	index := cost.Milliseconds()
	if index < 100 {
		index = index / 10
	} else if index < 1000 {
		index = 9 + index/100
	} else if index < 10000 {
		index = 19 + index/1000
	} else {
		index = 29
	}
	return int(index)
}

func randPoint(r *rand.Rand) (float64, float64) {
	lon := *centerLon + (r.Float64()*2-1)*(*spread)
	lat := *centerLat + (r.Float64()*2-1)*(*spread)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	if lat > 85 {
		lat = 85
	} else if lat < -85 {
		lat = -85
	}
	return lon, lat
}

func waitBench(c redis.Conn, cmd string, args ...interface{}) error {
	s := time.Now()
	_, err := c.Do(strings.ToUpper(cmd), args...)
	if err != nil {
		fmt.Printf("do %s error %s\n", cmd, err.Error())
		return err
	}
	atomic.AddInt64(&latencyDistribute[latencyIndex(time.Since(s))], 1)
	return nil
}

func bench(cmd string, f func(c redis.Conn, r *rand.Rand, cindex int, loopIter int) error) {
	wg.Add(*clients)

	done := int32(0)
	addr := fmt.Sprintf("%s:%d", *ip, *port)
	currentNumList := make([]int64, *clients)
	errCnt := int64(0)
	t1 := time.Now()
	for i := 0; i < *clients; i++ {
		go func(clientIndex int) {
			defer wg.Done()
			c, err := redis.Dial("tcp", addr, redis.DialConnectTimeout(time.Second*3),
				redis.DialReadTimeout(time.Second),
				redis.DialWriteTimeout(time.Second),
			)
			if err != nil {
				fmt.Printf("failed to dial: %v\n", err.Error())
				return
			}
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientIndex)))
			for j := 0; j < loop; j++ {
				err = f(c, r, clientIndex, j)
				if err != nil {
					atomic.AddInt64(&errCnt, 1)
				}
				atomic.AddInt64(&currentNumList[clientIndex], 1)
			}
			c.Close()
		}(i)
	}

	go func() {
		lastNum := int64(0)
		lastTime := time.Now()
		for atomic.LoadInt32(&done) == 0 {
			time.Sleep(time.Second * 30)
			t2 := time.Now()
			d := t2.Sub(lastTime)
			num := int64(0)
			for i := range currentNumList {
				num += atomic.LoadInt64(&currentNumList[i])
			}
			if num <= lastNum {
				continue
			}
			fmt.Printf("%s: %s %0.3f micros/op, %0.2fop/s, err: %v, num:%v\n",
				cmd,
				d.String(),
				float64(d.Nanoseconds()/1e3)/float64(num-lastNum),
				float64(num-lastNum)/d.Seconds(),
				atomic.LoadInt64(&errCnt),
				num,
			)
			lastNum = num
			lastTime = t2
		}
	}()

	wg.Wait()
	atomic.StoreInt32(&done, 1)
	t2 := time.Now()
	d := t2.Sub(t1)

	fmt.Printf("%s: %s %0.3f micros/op, %0.2fop/s, err: %v, num:%v\n",
		cmd,
		d.String(),
		float64(d.Nanoseconds()/1e3)/float64(*number),
		float64(*number)/d.Seconds(),
		atomic.LoadInt64(&errCnt),
		*number,
	)
	for i, v := range latencyDistribute {
		if i == 0 {
			fmt.Printf("latency below 100ms\n")
		} else if i == 10 {
			fmt.Printf("latency between 100ms ~ 999ms\n")
		} else if i == 20 {
			fmt.Printf("latency above 1s\n")
		}
		fmt.Printf("latency interval %d: %v\n", i, v)
		atomic.StoreInt64(&latencyDistribute[i], 0)
	}
}

var docBase int64

func nextDoc() int64 {
	return atomic.AddInt64(&docBase, 1) % int64(*docCnt)
}

func benchAdd() {
	atomic.StoreInt64(&docBase, 0)
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		args := make([]interface{}, 0, 2+2*(*points))
		args = append(args, *field, nextDoc())
		for i := 0; i < *points; i++ {
			lon, lat := randPoint(r)
			args = append(args, lon, lat)
		}
		return waitBench(c, "GEOIDX.ADD", args...)
	}
	bench("add", f)
}

func benchRadius() {
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		lon, lat := randPoint(r)
		return waitBench(c, "GEOIDX.RADIUS", *field, lon, lat, *radiusKM, "km")
	}
	bench("radius", f)
}

func benchRadiusWithDist() {
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		lon, lat := randPoint(r)
		return waitBench(c, "GEOIDX.RADIUS", *field, lon, lat, *radiusKM, "km", "WITHDIST")
	}
	bench("radius_withdist", f)
}

func benchBox() {
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		lon1, lat1 := randPoint(r)
		lon2, lat2 := randPoint(r)
		return waitBench(c, "GEOIDX.BOX", *field, lon1, lat1, lon2, lat2)
	}
	bench("box", f)
}

func benchPos() {
	atomic.StoreInt64(&docBase, 0)
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		return waitBench(c, "GEOIDX.POS", *field, r.Int63n(int64(*docCnt)))
	}
	bench("pos", f)
}

func benchDel() {
	atomic.StoreInt64(&docBase, 0)
	f := func(c redis.Conn, r *rand.Rand, cindex int, loopi int) error {
		return waitBench(c, "GEOIDX.DEL", *field, nextDoc())
	}
	bench("del", f)
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	flag.Parse()

	if *number <= 0 {
		panic("invalid number")
	}

	if *clients <= 0 || *number < *clients {
		panic("invalid client number")
	}
	if *docCnt <= 0 || *points <= 0 {
		panic("invalid document count or points")
	}

	loop = *number / *clients
	if *round <= 0 {
		*round = 1
	}

	ts := strings.Split(*tests, ",")

	for i := 0; i < *round; i++ {
		for _, s := range ts {
			switch strings.ToLower(s) {
			case "add":
				benchAdd()
			case "radius":
				benchRadius()
				benchRadiusWithDist()
			case "box":
				benchBox()
			case "pos":
				benchPos()
			case "del":
				benchDel()
			}
		}

		println("")
	}
}
