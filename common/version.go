package common

import (
	"fmt"
	"runtime"
)

// set by -ldflags at build time
var (
	VerBinary = "unset"
	BuildTime = "unset"
	Commit    = "unset"
)

func VerString(app string) string {
	return fmt.Sprintf("%s v%s (go %s), commit %s built at %s", app, VerBinary, runtime.Version(), Commit, BuildTime)
}
