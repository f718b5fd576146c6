package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level orders log severities.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value to a Level; unknown values are info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetLevel drops lines below l.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// Debug writes a debug-level line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(LevelDebug, msg, fields)
}

// Info writes an info-level line with the given fields.
func Info(msg string, fields map[string]any) {
	write(LevelInfo, msg, fields)
}

// Warn writes a warn-level line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(LevelWarn, msg, fields)
}

// Error writes an error-level line with the given fields.
func Error(msg string, fields map[string]any) {
	write(LevelError, msg, fields)
}

// write emits one JSON object per line on stdout. Error values are
// stringified and ts, level and msg always win over same-named fields.
func write(level Level, msg string, fields map[string]any) {
	if int32(level) < minLevel.Load() {
		return
	}
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		switch t := v.(type) {
		case error:
			if t != nil {
				v = t.Error()
			}
		case time.Duration:
			v = t.Milliseconds()
		}
		entry[k] = v
	}
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	entry["ts"] = ts
	entry["level"] = level.String()
	entry["msg"] = msg
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stdout, `{"ts":%q,"level":"error","msg":"telemetry.marshal_failed","source":%q,"error":%q}`+"\n", ts, msg, err.Error())
		return
	}
	os.Stdout.Write(append(data, '\n'))
}
