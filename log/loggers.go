package log

import (
	"fmt"
	"time"
)

func (sl *SubLogger) stage(header, data string) {
	fmt.Fprintf(output, "%s %s %s: %s\n",
		time.Now().Format(timestampFormat),
		header,
		sl.name,
		data)
}

// Info takes a pointer sublogger struct and logs an info string
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.info {
		return
	}
	sl.stage(infoHeader, data)
}

// Infof takes a pointer sublogger struct and formats an info message
func Infof(sl *SubLogger, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.info {
		return
	}
	sl.stage(infoHeader, fmt.Sprintf(format, v...))
}

// Debug takes a pointer sublogger struct and logs a debug string
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.debug {
		return
	}
	sl.stage(debugHeader, data)
}

// Debugf takes a pointer sublogger struct and formats a debug message
func Debugf(sl *SubLogger, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.debug {
		return
	}
	sl.stage(debugHeader, fmt.Sprintf(format, v...))
}

// Warn takes a pointer sublogger struct and logs a warning string
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.warn {
		return
	}
	sl.stage(warnHeader, data)
}

// Warnf takes a pointer sublogger struct and formats a warning message
func Warnf(sl *SubLogger, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.warn {
		return
	}
	sl.stage(warnHeader, fmt.Sprintf(format, v...))
}

// Error takes a pointer sublogger struct and logs an error string
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.err {
		return
	}
	sl.stage(errorHeader, data)
}

// Errorf takes a pointer sublogger struct and formats an error message
func Errorf(sl *SubLogger, format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if !sl.err {
		return
	}
	sl.stage(errorHeader, fmt.Sprintf(format, v...))
}
