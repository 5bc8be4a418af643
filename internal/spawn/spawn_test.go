package spawn

import (
	"sync"
	"testing"
	"time"
)

// mainLoop is a minimal stand-in for the main-loop poster: it runs posted
// closures on a single goroutine in order.
type mainLoop struct {
	mu  sync.Mutex
	fns []func()
}

func (l *mainLoop) post(fn func()) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *mainLoop) drain() {
	l.mu.Lock()
	fns := l.fns
	l.fns = nil
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestSpawnCapturesStdout(t *testing.T) {
	loop := &mainLoop{}
	var lines []string
	exited := make(chan int, 1)

	_, err := Spawn("sh", []string{"-c", "echo one; echo two"}, Options{
		OnStdout: func(line string) { lines = append(lines, line) },
		OnExit:   func(code int) { exited <- code },
	}, loop.post)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		loop.drain()
		select {
		case code := <-exited:
			loop.drain()
			if code != 0 {
				t.Fatalf("exit code %d", code)
			}
			if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
				t.Fatalf("lines = %v", lines)
			}
			return
		case <-deadline:
			t.Fatal("timed out")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestSpawnStdinLines(t *testing.T) {
	loop := &mainLoop{}
	var lines []string
	exited := make(chan int, 1)

	_, err := Spawn("cat", nil, Options{
		StdinLines: []string{"a", "b"},
		OnStdout:   func(line string) { lines = append(lines, line) },
		OnExit:     func(code int) { exited <- code },
	}, loop.post)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		loop.drain()
		select {
		case <-exited:
			loop.drain()
			if len(lines) != 2 || lines[0] != "a" {
				t.Fatalf("lines = %v", lines)
			}
			return
		case <-deadline:
			t.Fatal("timed out")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestSpawnMissingProgram(t *testing.T) {
	if _, err := Spawn("/no/such/prog", nil, Options{}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadLinesLimit(t *testing.T) {
	lines, err := ReadLines("sh", []string{"-c", "seq 1 100"}, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(lines) != 5 || lines[0] != "1" || lines[4] != "5" {
		t.Fatalf("lines = %v", lines)
	}
}
