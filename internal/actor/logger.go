package actor

import "github.com/sirupsen/logrus"

// logger is the package-wide logger used by the runtime.
var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger overrides the package logger.
//
// If not set, logrus.StandardLogger() is used.
func SetLogger(l logrus.FieldLogger) {
	logger = l
}
