package geo

import (
	"flag"
	"os"
	"testing"

	"github.com/youzan/zangeo/common"
)

func TestMain(m *testing.M) {
	SetLogger(int32(common.LOG_INFO), common.NewDefaultLogger("geo"))
	flag.Parse()
	if testing.Verbose() {
		SetLogLevel(int32(common.LOG_DETAIL))
	}
	ret := m.Run()
	os.Exit(ret)
}
