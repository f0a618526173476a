package logger

import (
	"fmt"
	"testing"
)

type recorder struct {
	lines []string
}

func (r *recorder) record(level, msg string, keyvals ...any) {
	r.lines = append(r.lines, fmt.Sprint(level, " ", msg, keyvals))
}

func (r *recorder) Log(m string, kv ...any)   { r.record("LOG", m, kv...) }
func (r *recorder) Debug(m string, kv ...any) { r.record("DEBUG", m, kv...) }
func (r *recorder) Info(m string, kv ...any)  { r.record("INFO", m, kv...) }
func (r *recorder) Warn(m string, kv ...any)  { r.record("WARN", m, kv...) }
func (r *recorder) Error(m string, kv ...any) { r.record("ERROR", m, kv...) }
func (r *recorder) Fatal(m string, kv ...any) { r.record("FATAL", m, kv...) }

func TestFanOut(t *testing.T) {
	defer Reset()

	Info("[Test] dropped before Init")

	a, b := &recorder{}, &recorder{}
	Init(a, b)
	Info("[Cache] Hit", "key", "k1")
	Log("[Graph] Plain", "nodes", 3)
	Warn("[Session] Failed")

	want := []string{
		"INFO [Cache] Hit[key k1]",
		"LOG [Graph] Plain[nodes 3]",
		"WARN [Session] Failed[]",
	}
	for _, r := range []*recorder{a, b} {
		if len(r.lines) != len(want) {
			t.Fatalf("got %d lines, want %d: %v", len(r.lines), len(want), r.lines)
		}
		for i := range want {
			if r.lines[i] != want[i] {
				t.Fatalf("line %d = %q, want %q", i, r.lines[i], want[i])
			}
		}
	}

	Reset()
	Error("[Test] dropped after Reset")
	if len(a.lines) != len(want) {
		t.Fatalf("logging after Reset reached a backend")
	}
}
