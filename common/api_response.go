package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type Decorator func(APIHandler) APIHandler

type APIHandler func(http.ResponseWriter, *http.Request, httprouter.Params) (interface{}, error)

type HttpErr struct {
	Code int
	Text string
}

func (e HttpErr) Error() string {
	return e.Text
}

// ToHttpErr maps the error of a handler to a response status. Query errors
// are the fault of the request, anything else is ours.
func ToHttpErr(err error) HttpErr {
	var he HttpErr
	if errors.As(err, &he) {
		return he
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return HttpErr{Code: http.StatusBadRequest, Text: qe.Error()}
	}
	if errors.Is(err, ErrInvalidArgs) {
		return HttpErr{Code: http.StatusBadRequest, Text: err.Error()}
	}
	return HttpErr{Code: http.StatusInternalServerError, Text: err.Error()}
}

func PlainText(f APIHandler) APIHandler {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		code := http.StatusOK
		data, err := f(w, req, ps)
		if err != nil {
			he := ToHttpErr(err)
			code = he.Code
			data = he.Text
		}
		switch d := data.(type) {
		case string:
			w.WriteHeader(code)
			io.WriteString(w, d)
		case []byte:
			w.WriteHeader(code)
			w.Write(d)
		default:
			panic(fmt.Sprintf("unknown response type %T", data))
		}
		return nil, err
	}
}

func V1(f APIHandler) APIHandler {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
		data, err := f(w, req, ps)
		if err != nil {
			he := ToHttpErr(err)
			RespondV1(w, he.Code, he.Text)
			return nil, he
		}
		RespondV1(w, http.StatusOK, data)
		return nil, nil
	}
}

func RespondV1(w http.ResponseWriter, code int, data interface{}) {
	var response []byte
	var err error
	var isJSON bool

	if code == http.StatusOK {
		switch d := data.(type) {
		case string:
			response = []byte(d)
		case []byte:
			response = d
		case nil:
			response = []byte{}
		default:
			isJSON = true
			response, err = json.Marshal(data)
			if err != nil {
				code = http.StatusInternalServerError
				data = err
			}
		}
	}

	if code != http.StatusOK {
		isJSON = true
		response, _ = json.Marshal(map[string]string{"message": fmt.Sprintf("%v", data)})
	}

	if isJSON {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(code)
	w.Write(response)
}

func Decorate(f APIHandler, ds ...Decorator) httprouter.Handle {
	decorated := f
	for _, decorate := range ds {
		decorated = decorate(decorated)
	}
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		decorated(w, req, ps)
	}
}

// HttpLog logs failed requests, and successful ones if the log level is at
// least level. It must wrap the response decorator to see the status.
func HttpLog(log *LevelLogger, level int32) Decorator {
	return func(f APIHandler) APIHandler {
		return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) (interface{}, error) {
			start := time.Now()
			response, err := f(w, req, ps)
			elapsed := time.Since(start)
			status := http.StatusOK
			if err != nil {
				status = ToHttpErr(err).Code
			}
			if log == nil || log.Logger == nil {
				return response, err
			}
			if (status != http.StatusNotModified && status != http.StatusOK) || (status == http.StatusOK && log.Level() >= level) {
				log.Logger.Output(2, fmt.Sprintf("%d %s %s (%s) %s",
					status, req.Method, req.URL.RequestURI(), req.RemoteAddr, elapsed))
			}
			return response, err
		}
	}
}
