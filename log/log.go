// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log wraps a single logrus.Logger with the three knobs
// cnf.Options.Logging exposes: level, format and output. There is no
// hook registry here — one process logs to one destination in one
// format, so the logger's own formatter/output are set directly
// instead of routed through a Fire-per-entry hook.
package log

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLevel sets the logging level of the logger instance.
func SetLevel(v string) {
	switch v {
	case "trace":
		log.SetLevel(logrus.TraceLevel)
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		log.SetLevel(logrus.FatalLevel)
	case "panic":
		log.SetLevel(logrus.PanicLevel)
	}
}

// SetOutput sets the logging output of the logger instance.
func SetOutput(v string) {
	switch v {
	case "none":
		log.SetOutput(ioutil.Discard)
	case "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	}
}

// SetFormat sets the logging format of the logger instance.
func SetFormat(v string) {
	switch v {
	case "json":
		log.SetFormatter(&JSONFormatter{
			IgnoreFields:    []string{"ctx", "vars"},
			TimestampFormat: time.RFC3339,
		})
	case "text":
		log.SetFormatter(&TextFormatter{
			IgnoreFields:    []string{"ctx", "vars"},
			TimestampFormat: time.RFC3339,
		})
	}
}

// Debugf logs a message at level Debug on the standard logger.
func Debugf(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Error logs a message at level Error on the standard logger.
func Error(v ...interface{}) {
	log.Error(v...)
}

// Fatal logs a message at level Fatal on the standard logger, then
// calls os.Exit(1).
func Fatal(v ...interface{}) {
	log.Fatal(v...)
}

// WithField prepares a log entry with a single data field.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}
