package common

import (
	"errors"
	"math"
	"strings"

	"github.com/absolute8511/redcon"
)

const (
	DIR_PERM  = 0755
	FILE_PERM = 0644
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrStopped        = errors.New("the node stopped")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrUnexpectError  = errors.New("unexpected error")
	ErrNotSupport     = errors.New("not supported")
)

const (
	KEYSEP = byte(':')
)

var (
	MinScore float64 = math.Inf(-1)
	MaxScore float64 = math.Inf(1)
)

const (
	RangeClose uint8 = 0x00
	RangeLOpen uint8 = 0x01
	RangeROpen uint8 = 0x10
	RangeOpen  uint8 = 0x11
)

// RangeType returns the range flags for the given inclusive bounds.
func RangeType(minInclusive bool, maxInclusive bool) uint8 {
	rt := RangeClose
	if !minInclusive {
		rt |= RangeLOpen
	}
	if !maxInclusive {
		rt |= RangeROpen
	}
	return rt
}

type CommandFunc func(redcon.Conn, redcon.Command)

type CmdRouter struct {
	wcmds map[string]CommandFunc
	rcmds map[string]CommandFunc
}

func NewCmdRouter() *CmdRouter {
	return &CmdRouter{
		wcmds: make(map[string]CommandFunc),
		rcmds: make(map[string]CommandFunc),
	}
}

func (r *CmdRouter) Register(isWrite bool, name string, f CommandFunc) bool {
	cmds := r.wcmds
	if !isWrite {
		cmds = r.rcmds
	}
	name = strings.ToLower(name)
	if _, ok := cmds[name]; ok {
		return false
	}
	cmds[name] = f
	return true
}

// return handler, iswrite, isexist
func (r *CmdRouter) GetCmdHandler(name string) (CommandFunc, bool, bool) {
	v, ok := r.rcmds[strings.ToLower(name)]
	if ok {
		return v, false, ok
	}
	v, ok = r.wcmds[strings.ToLower(name)]
	return v, true, ok
}
