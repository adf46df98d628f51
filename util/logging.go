package util

import (
	"fmt"

	"github.com/golang/glog"
)

// LoggingEnabled turns on request tracing for the long-running servers.
var LoggingEnabled = false

// LogF writes a trace line through glog, attributed to the caller.
func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}
