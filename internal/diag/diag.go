// Package diag carries non-fatal diagnostics out of the numeric code.
//
// Calculations receive an Observer instead of a global logger. A
// *zap.SugaredLogger satisfies Observer as is.
package diag

import (
	"fmt"
	"sync"
)

type Observer interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
)

// Warning is a diagnostic attached to an element of the model. ID is empty
// for model-wide diagnostics.
type Warning struct {
	Level Level  `json:"level"`
	ID    string `json:"id,omitempty"`
	Msg   string `json:"msg"`
}

type nop struct{}

func (nop) Debugw(string, ...any) {}
func (nop) Infow(string, ...any)  {}
func (nop) Warnw(string, ...any)  {}

// Nop discards everything.
var Nop Observer = nop{}

// Collector keeps Infow and Warnw calls as Warnings. Debug output is dropped.
// The "id" key, when present, becomes Warning.ID and the remaining pairs are
// appended to the message.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

func (c *Collector) Debugw(string, ...any) {}

func (c *Collector) Infow(msg string, kv ...any) { c.add(LevelInfo, msg, kv) }

func (c *Collector) Warnw(msg string, kv ...any) { c.add(LevelWarning, msg, kv) }

func (c *Collector) add(level Level, msg string, kv []any) {
	w := Warning{Level: level, Msg: msg}
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if key == "id" {
			w.ID = fmt.Sprint(kv[i+1])
			continue
		}
		w.Msg += fmt.Sprintf(" %s=%v", key, kv[i+1])
	}
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
}

// Warnings returns a copy of what was collected, in arrival order.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Only returns the collected diagnostics of the given level.
func (c *Collector) Only(level Level) []Warning {
	var out []Warning
	for _, w := range c.Warnings() {
		if w.Level == level {
			out = append(out, w)
		}
	}
	return out
}

type tee []Observer

// Tee forwards every call to all observers. Nil observers are skipped.
func Tee(obs ...Observer) Observer {
	t := make(tee, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			t = append(t, o)
		}
	}
	return t
}

func (t tee) Debugw(msg string, kv ...any) {
	for _, o := range t {
		o.Debugw(msg, kv...)
	}
}

func (t tee) Infow(msg string, kv ...any) {
	for _, o := range t {
		o.Infow(msg, kv...)
	}
}

func (t tee) Warnw(msg string, kv ...any) {
	for _, o := range t {
		o.Warnw(msg, kv...)
	}
}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop
	}
	return o
}
