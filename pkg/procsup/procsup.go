// Package procsup implements the Process Supervisor (C1): spawning a child
// process under either a pseudo-terminal or plain pipes, merging its
// stdout/stderr into a single broadcast byte stream, and guaranteeing that
// dropping the handle terminates the whole process group. It generalizes the
// teacher's pkg/tools/process.go session manager and the process-group-kill
// idiom from pkg/tools/shell_unix.go into a standalone, tool-agnostic
// supervisor.
package procsup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/vtcode/vtcode/pkg/vterr"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// Mode selects how the child's stdout/stderr are captured.
type Mode int

const (
	// ModePipe connects stdout/stderr to regular OS pipes.
	ModePipe Mode = iota
	// ModePTY allocates a pseudo-terminal, giving the child a controlling
	// terminal (needed for programs that detect interactivity).
	ModePTY
)

// StdinMode selects how the child's stdin is connected.
type StdinMode int

const (
	// StdinPiped exposes a writable channel to the child's stdin.
	StdinPiped StdinMode = iota
	// StdinNull connects stdin to an immediately-EOF source.
	StdinNull
)

// SpawnOptions describes a child process to launch.
type SpawnOptions struct {
	Program string
	Args    []string
	Dir     string
	Env     map[string]string

	Mode      Mode
	Stdin     StdinMode
	QuietPeriod time.Duration
	WriterCapacity    int
	BroadcastCapacity int

	// ForwardHostStdin, valid only with Mode == ModePTY, copies the calling
	// process's own stdin into the child's PTY verbatim instead of routing
	// it through the Write() channel. If the host stdin is itself a
	// terminal, it is switched to raw mode for the duration so the child
	// sees every keystroke unbuffered, the way a shell handed a controlling
	// terminal expects.
	ForwardHostStdin bool
}

// SpawnedProcess is the result of a successful spawn: the handle plus the
// channels the caller needs to drain output and observe exit.
type SpawnedProcess struct {
	Handle  *ProcessHandle
	Output  <-chan []byte
	ExitCh  <-chan struct{}
}

// ProcessHandle is owned exclusively by the supervisor until surrendered to
// the tool executor. Dropping it (calling Terminate, or letting it be
// garbage collected after Terminate) aborts all lifecycle goroutines and
// kills the child's process group.
type ProcessHandle struct {
	pid int

	writer chan []byte
	cancel context.CancelFunc

	exited   atomic.Bool
	exitCode atomic.Int32

	mu          sync.Mutex
	subscribers []chan []byte
	bcastCap    int

	pty *os.File // non-nil only in ModePTY

	cmd *exec.Cmd
}

// PID returns the child's process id.
func (h *ProcessHandle) PID() int { return h.pid }

// HasExited reports whether the wait task has observed termination.
func (h *ProcessHandle) HasExited() bool { return h.exited.Load() }

// ExitCode returns the observed exit code, or -1 if the process has not
// exited yet.
func (h *ProcessHandle) ExitCode() int32 { return h.exitCode.Load() }

// Write enqueues bytes for delivery to the child's stdin, in order. It
// returns an error if the writer channel has been closed by Terminate.
func (h *ProcessHandle) Write(b []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = vterr.New(vterr.KindProcessSpawnFailed, "write to closed stdin channel")
		}
	}()
	h.writer <- b
	return nil
}

// OutputReceiver returns a fresh subscriber channel to the merged
// stdout/stderr broadcast. Per spec.md's ordering guarantee, a subscriber
// receives a prefix-monotonic view of chunks from the point of subscription;
// chunks emitted before Subscribe are not replayed. A subscriber that falls
// behind has its oldest unread chunk dropped rather than stalling the
// broadcaster.
func (h *ProcessHandle) OutputReceiver() <-chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan []byte, h.bcastCap)
	h.subscribers = append(h.subscribers, ch)
	return ch
}

func (h *ProcessHandle) broadcast(chunk []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		select {
		case sub <- chunk:
		default:
			// Lagging subscriber: drop the oldest buffered chunk to make
			// room rather than block the broadcaster for every reader.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- chunk:
			default:
			}
		}
	}
}

func (h *ProcessHandle) closeSubscribers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		close(sub)
	}
	h.subscribers = nil
}

// Terminate idempotently kills the child's entire process group (not just
// the leader), so shells and their descendants are caught, and aborts all
// reader/writer lifecycle goroutines.
func (h *ProcessHandle) Terminate() error {
	// Closing the writer channel ends the writer task (which closes the
	// child's stdin) and makes later Write calls return an error. A repeated
	// Terminate finds it already closed; the recover keeps that a no-op.
	func() {
		defer func() { _ = recover() }()
		close(h.writer)
	}()
	h.cancel()
	if h.pid <= 0 {
		return nil
	}
	pgid, err := syscall.Getpgid(h.pid)
	if err != nil {
		// Process may have already exited; nothing left to kill.
		return nil
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}

// Spawn launches a child process per opts, wiring stdin/stdout/stderr and
// returning a SpawnedProcess once the process has actually started. Spawn
// failure is fatal for the call: it returns an error and leaves no
// goroutines running.
func Spawn(ctx context.Context, opts SpawnOptions) (*SpawnedProcess, error) {
	log := vtlog.For("procsup")

	if opts.WriterCapacity <= 0 {
		opts.WriterCapacity = 128
	}
	if opts.BroadcastCapacity <= 0 {
		opts.BroadcastCapacity = 256
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = 500 * time.Millisecond
	}

	childCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(childCtx, opts.Program, opts.Args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		env := os.Environ()
		for k, v := range opts.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	// Own process group so Terminate can kill the whole tree, not just the
	// leader; this also detaches the child from the parent's controlling tty.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	handle := &ProcessHandle{
		writer:   make(chan []byte, opts.WriterCapacity),
		cancel:   cancel,
		bcastCap: opts.BroadcastCapacity,
		cmd:      cmd,
	}
	handle.exitCode.Store(-1)

	outCh := make(chan []byte, opts.BroadcastCapacity)
	exitCh := make(chan struct{})
	handle.subscribers = append(handle.subscribers, outCh)

	var stdinWriter interface {
		Write([]byte) (int, error)
		Close() error
	}

	switch opts.Mode {
	case ModePTY:
		f, err := pty.Start(cmd)
		if err != nil {
			cancel()
			return nil, vterr.Wrap(vterr.KindProcessSpawnFailed, "pty start failed", err)
		}
		handle.pty = f
		stdinWriter = f
		go readLoop(handle, f)

		if opts.ForwardHostStdin {
			fd := int(os.Stdin.Fd())
			if term.IsTerminal(fd) {
				if prevState, rawErr := term.MakeRaw(fd); rawErr == nil {
					go func() {
						<-childCtx.Done()
						_ = term.Restore(fd, prevState)
					}()
				}
			}
			go io.Copy(f, os.Stdin)
		}

	default:
		// os.Pipe gives one fd assignable to both Stdout and Stderr so the
		// two streams merge into a single reader, since cmd.StdoutPipe and
		// cmd.StderrPipe cannot share an underlying pipe.
		pr, pw, err := os.Pipe()
		if err != nil {
			cancel()
			return nil, vterr.Wrap(vterr.KindProcessSpawnFailed, "output pipe failed", err)
		}
		cmd.Stdout = pw
		cmd.Stderr = pw
		if opts.Stdin == StdinPiped {
			stdinPipe, err := cmd.StdinPipe()
			if err != nil {
				cancel()
				pr.Close()
				pw.Close()
				return nil, vterr.Wrap(vterr.KindProcessSpawnFailed, "stdin pipe failed", err)
			}
			stdinWriter = stdinPipe
		}
		if err := cmd.Start(); err != nil {
			cancel()
			pr.Close()
			pw.Close()
			return nil, vterr.Wrap(vterr.KindProcessSpawnFailed, "process start failed", err)
		}
		pw.Close() // parent's copy; the child keeps output flowing via its own fd
		go readLoop(handle, pr)
	}

	if opts.Stdin == StdinNull && stdinWriter != nil {
		stdinWriter.Close()
	}

	handle.pid = cmd.Process.Pid

	// Writer task: drains the writer channel and forwards to stdin, in
	// order, closing stdin when the channel is closed.
	if stdinWriter != nil && opts.Stdin == StdinPiped {
		go func() {
			for b := range handle.writer {
				if _, err := stdinWriter.Write(b); err != nil {
					log.Debug().Err(err).Msg("stdin write failed, stopping writer task")
					return
				}
			}
			stdinWriter.Close()
		}()
	}

	// Wait task: flips the exited flag, stores exit code, signals exit once.
	go func() {
		err := cmd.Wait()
		handle.exited.Store(true)
		handle.exitCode.Store(int32(extractExitCode(err)))
		close(exitCh)
		time.Sleep(handle.quietWindow())
		handle.closeSubscribers()
	}()

	return &SpawnedProcess{Handle: handle, Output: outCh, ExitCh: exitCh}, nil
}

func (h *ProcessHandle) quietWindow() time.Duration { return 500 * time.Millisecond }

func readLoop(h *ProcessHandle, r interface{ Read([]byte) (int, error) }) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			h.broadcast(chunk)
		}
		if err != nil {
			return
		}
	}
}

func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// CollectOutputUntilExit drains output until exitCh fires, then drains a
// short quiet period to capture trailing output, or returns the
// accumulated bytes with exit code -1 on timeout.
func CollectOutputUntilExit(ctx context.Context, output <-chan []byte, exitCh <-chan struct{}, handle *ProcessHandle, timeout time.Duration) ([]byte, int32) {
	var buf bytes.Buffer
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case chunk, ok := <-output:
			if ok {
				buf.Write(chunk)
			}
		case <-exitCh:
			drainQuiet(&buf, output, handle.quietWindow())
			return buf.Bytes(), handle.ExitCode()
		case <-deadline.C:
			return buf.Bytes(), -1
		case <-ctx.Done():
			return buf.Bytes(), -1
		}
	}
}

func drainQuiet(buf *bytes.Buffer, output <-chan []byte, window time.Duration) {
	t := time.NewTimer(window)
	defer t.Stop()
	for {
		select {
		case chunk, ok := <-output:
			if !ok {
				return
			}
			buf.Write(chunk)
		case <-t.C:
			return
		}
	}
}
