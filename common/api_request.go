package common

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"time"
)

type deadlinedConn struct {
	Timeout time.Duration
	net.Conn
}

func (c *deadlinedConn) Read(b []byte) (n int, err error) {
	c.Conn.SetReadDeadline(time.Now().Add(c.Timeout))
	return c.Conn.Read(b)
}

func (c *deadlinedConn) Write(b []byte) (n int, err error) {
	c.Conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	return c.Conn.Write(b)
}

func newDeadlineTransport(timeout time.Duration) *http.Transport {
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, netw, addr string) (net.Conn, error) {
			c, err := dialer.DialContext(ctx, netw, addr)
			if err != nil {
				return nil, err
			}
			return &deadlinedConn{timeout, c}, nil
		},
	}
	return transport
}

// APIRequest stores the json result in the value pointed to by ret. A non
// 200 response is returned as HttpErr.
func APIRequest(method string, endpoint string, body io.Reader, timeout time.Duration, ret interface{}) error {
	httpclient := &http.Client{Transport: newDeadlineTransport(timeout)}
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/zangeo; version=1.0")

	resp, err := httpclient.Do(req)
	if err != nil {
		return err
	}

	respBody, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return HttpErr{Code: resp.StatusCode, Text: string(respBody)}
	}

	if len(respBody) == 0 {
		respBody = []byte("{}")
	}

	if ret == nil {
		return nil
	}
	return json.Unmarshal(respBody, ret)
}
