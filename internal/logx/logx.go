// Package logx implements the Logger external interface on top of glog,
// giving every pipeline stage a component-tagged, leveled log call without
// each package needing its own logger construction.
package logx

import "github.com/golang/glog"

// Component tags which pipeline stage emitted a log line.
type Component string

const (
	Instantiate Component = "instantiate"
	Lower       Component = "lower"
	Mangle      Component = "mangle"
	Overload    Component = "overload"
	Layout      Component = "layout"
	Template    Component = "template"
)

// Level mirrors the standard severity ladder; Trace and Debug are routed
// through glog's verbosity-gated V(n) so they're compiled in but silent at
// the default verbosity.
type Level uint8

const (
	Trace Level = iota
	Debug
	Info
	Warning
	Error
)

const (
	traceVerbosity glog.Level = 2
	debugVerbosity glog.Level = 1
)

// Logger is the Logger component: one leveled, component-tagged call per
// log line, matching the `FLASH_LOG(component, level, ...)` call shape.
type Logger struct{}

var defaultLogger = Logger{}

// Default returns the package-level Logger so callers never need to
// construct one just to log a line.
func Default() Logger { return defaultLogger }

// Logf emits a formatted log line tagged with component at level.
func (Logger) Logf(component Component, level Level, format string, args ...interface{}) {
	tagged := "[" + string(component) + "] " + format
	switch level {
	case Trace:
		if glog.V(traceVerbosity) {
			glog.Infof(tagged, args...)
		}
	case Debug:
		if glog.V(debugVerbosity) {
			glog.Infof(tagged, args...)
		}
	case Info:
		glog.Infof(tagged, args...)
	case Warning:
		glog.Warningf(tagged, args...)
	case Error:
		glog.Errorf(tagged, args...)
	}
}

// Tracef, Debugf, Infof, Warningf, and Errorf are thin per-level
// conveniences over Logf for call sites that already know their level.
func (l Logger) Tracef(component Component, format string, args ...interface{}) {
	l.Logf(component, Trace, format, args...)
}

func (l Logger) Debugf(component Component, format string, args ...interface{}) {
	l.Logf(component, Debug, format, args...)
}

func (l Logger) Infof(component Component, format string, args ...interface{}) {
	l.Logf(component, Info, format, args...)
}

func (l Logger) Warningf(component Component, format string, args ...interface{}) {
	l.Logf(component, Warning, format, args...)
}

func (l Logger) Errorf(component Component, format string, args ...interface{}) {
	l.Logf(component, Error, format, args...)
}
