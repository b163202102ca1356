package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers for common analysis entities.
func Component(name string) Field {
	return String("component", name)
}

func Program(name string) Field {
	return String("program", name)
}

func Table(name string) Field {
	return String("table", name)
}

func State(name string) Field {
	return String("state", name)
}

func Host(id string) Field {
	return String("host", id)
}

func Target(name string) Field {
	return String("target", name)
}

func Graph(name string) Field {
	return String("graph", name)
}

func ContextID(id string) Field {
	return String("context_id", id)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
