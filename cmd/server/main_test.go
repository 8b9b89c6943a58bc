package main

import (
	"flag"
	"io"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestMainLifecycle(t *testing.T) {
	tmp := t.TempDir()

	origArgs := os.Args
	origCommandLine := flag.CommandLine
	defer func() {
		os.Args = origArgs
		flag.CommandLine = origCommandLine
	}()

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = []string{
		"server",
		"--data-dir", tmp,
		"--port", "0",
		"--host", "127.0.0.1",
	}

	done := make(chan struct{})
	go func() {
		time.Sleep(150 * time.Millisecond)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(syscall.SIGTERM)
		}
	}()

	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("main did not exit")
	}
}
