package geo

import (
	"github.com/youzan/zangeo/common"
)

var geoLog = common.NewLevelLogger(common.LOG_INFO, common.NewDefaultLogger("geo"))

func SetLogLevel(level int32) {
	geoLog.SetLevel(level)
}

func SetLogger(level int32, logger common.Logger) {
	geoLog.SetLevel(level)
	geoLog.Logger = logger
}
