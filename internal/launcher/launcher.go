// Package launcher runs the external downloader as a child process and streams
// its output back as ordered events.
package launcher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Stream constants
const (
	StderrChunkSize = 4096
	MaxLineSize     = 1024 * 1024
	UnknownExitCode = -1
	logPrefixLaunch = "[LAUNCH]"
)

// Sink receives the events of one process. OnStdoutLine calls arrive in
// emission order from a single goroutine; OnExit is always the last call and
// happens after both output streams are drained.
type Sink interface {
	OnStdoutLine(line string)
	OnStderrChunk(chunk string)
	OnExit(code int)
}

// Handle controls a started process
type Handle interface {
	PID() int
	Terminate() error
	Done() <-chan struct{}
}

// Launcher starts external processes
type Launcher interface {
	Launch(ctx context.Context, argv []string, dir string, sink Sink) (Handle, error)
}

// LaunchError means the process could not be started at all
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Exec launches a fixed executable with optional leading arguments, for
// example an interpreter and a script path.
type Exec struct {
	Executable string
	Script     string   // optional, checked for existence and passed first
	Args       []string // extra leading arguments after Script
	Env        []string // appended to the current environment
}

// NewExec creates a launcher for the given executable and optional script
func NewExec(executable, script string) *Exec {
	return &Exec{Executable: executable, Script: script}
}

// Command returns the full argument list for argv
func (e *Exec) Command(argv []string) []string {
	args := make([]string, 0, len(e.Args)+len(argv)+1)
	if e.Script != "" {
		args = append(args, e.Script)
	}
	args = append(args, e.Args...)
	return append(args, argv...)
}

// Launch starts the process and begins streaming its output to sink
func (e *Exec) Launch(ctx context.Context, argv []string, dir string, sink Sink) (Handle, error) {
	if strings.TrimSpace(e.Executable) == "" {
		return nil, &LaunchError{Path: e.Executable, Err: errors.New("executable is not configured")}
	}

	path, err := exec.LookPath(e.Executable)
	if err != nil {
		return nil, &LaunchError{Path: e.Executable, Err: err}
	}

	if e.Script != "" {
		if _, err := os.Stat(e.Script); err != nil {
			return nil, &LaunchError{Path: e.Script, Err: fmt.Errorf("script not found: %w", err)}
		}
	}

	cmd := exec.CommandContext(ctx, path, e.Command(argv)...)
	cmd.Dir = dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	setupProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Path: path, Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &LaunchError{Path: path, Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: path, Err: err}
	}

	log.Printf("%s %s started, PID: %d", logPrefixLaunch, path, cmd.Process.Pid)

	p := &process{cmd: cmd, done: make(chan struct{})}
	go p.run(stdout, stderr, sink)
	return p, nil
}

type process struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

// Terminate stops the process group; it is a no-op once the process exited
func (p *process) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	var err error
	p.once.Do(func() {
		log.Printf("%s terminating PID %d", logPrefixLaunch, p.cmd.Process.Pid)
		err = terminateProcess(p.cmd.Process)
	})
	return err
}

func (p *process) run(stdout, stderr io.Reader, sink Sink) {
	defer close(p.done)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		scanner.Split(ScanLinesOrReturns)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			sink.OnStdoutLine(line)
		}
		if err := scanner.Err(); err != nil {
			log.Printf("%s PID %d: stdout read error: %v", logPrefixLaunch, p.cmd.Process.Pid, err)
			// Drain so the child never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, stdout)
		}
	}()

	go func() {
		defer wg.Done()
		buf := make([]byte, StderrChunkSize)
		for {
			n, err := stderr.Read(buf)
			if n > 0 {
				sink.OnStderrChunk(string(buf[:n]))
			}
			if err != nil {
				return
			}
		}
	}()

	wg.Wait()
	code := exitCode(p.cmd.Wait())
	log.Printf("%s PID %d exited with code %d", logPrefixLaunch, p.cmd.Process.Pid, code)
	sink.OnExit(code)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return UnknownExitCode
}

// ScanLinesOrReturns is a bufio.SplitFunc that ends a token at '\n' or '\r',
// since downloaders redraw progress lines with carriage returns.
func ScanLinesOrReturns(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
