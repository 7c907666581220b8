package socket

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.New()

// SetLogger updates the logger this package uses. If l is nil, we'll use
// a fresh logrus.Logger writing to stderr.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		logger = logrus.New()
	} else {
		logger = l
	}
}

// LogLevel selects which socket operations are logged.
type LogLevel int

const (
	// LogDebug logs every operation.
	LogDebug LogLevel = iota - 1
	// LogInfo logs open, close and accept, and every failure.
	LogInfo
	// LogError logs failures only.
	LogError
	// LogNone disables logging.
	LogNone
)

var logLevelNames = map[LogLevel]string{
	LogDebug: "debug",
	LogInfo:  "info",
	LogError: "error",
	LogNone:  "none",
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel is the inverse of LogLevel.String.
func ParseLogLevel(s string) (LogLevel, error) {
	for l, name := range logLevelNames {
		if name == s {
			return l, nil
		}
	}
	return LogInfo, errors.Errorf("unknown log level %q", s)
}

// enabled reports whether an operation with the given outcome is logged.
func (l LogLevel) enabled(op string, failed bool) bool {
	switch l {
	case LogDebug:
		return true
	case LogInfo:
		return failed || op == "open" || op == "close" || op == "accept"
	case LogError:
		return failed
	}
	return false
}

// logOp writes one entry for a finished operation. Timeouts are never
// logged. The byte count n is only added for successful transfers.
func logOp(level LogLevel, socket, op, local, remote string, n int, err error) {
	if errors.Is(err, ErrTimeout) || !level.enabled(op, err != nil) {
		return
	}

	entry := logger.WithFields(logrus.Fields{
		"socket": socket,
		"op":     op,
		"local":  local,
		"remote": remote,
	})
	if n >= 0 && err == nil {
		entry = entry.WithField("bytes", n)
	}
	if err != nil {
		entry.WithError(err).Error("socket operation failed")
		return
	}
	entry.Info(op)
}
