// Package core holds process-wide crash handling for goroutines that own the terminal
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	hookMu    sync.Mutex
	crashHook func()
	exit      = os.Exit
	stderr    io.Writer = os.Stderr
)

// SetCrashHook registers the cleanup run before a crash report, nil clears it
// The terminal host registers its screen teardown here
func SetCrashHook(fn func()) {
	hookMu.Lock()
	crashHook = fn
	hookMu.Unlock()
}

// HandleCrash restores the terminal, prints the panic and stack, then exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	hookMu.Lock()
	hook := crashHook
	hookMu.Unlock()
	if hook != nil {
		func() {
			defer func() { _ = recover() }()
			hook()
		}()
	}

	fmt.Fprintf(stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword so the terminal is restored on crash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
