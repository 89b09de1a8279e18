package importer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Helper owns the SCM import helper subprocess. The helper speaks the
// chunk protocol on its standard input and output; its standard error
// passes through for diagnostics.
//
// The process starts when the Helper is created and is joined by
// Close: closing its stdin signals shutdown, then its exit is awaited.
type Helper struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	channel *Channel
	logger  *slog.Logger
}

// StartHelper launches helperPath against the repository at repoPath.
func StartHelper(helperPath, repoPath string, logger *slog.Logger) (*Helper, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd := exec.Command(helperPath, repoPath)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("start helper: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("start helper: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start helper %s: %w", helperPath, err)
	}
	logger.Info("import helper started", "helper", helperPath, "repo", repoPath, "pid", cmd.Process.Pid)

	// There is no startup handshake; a broken repository surfaces as a
	// helper error on the first request.
	return &Helper{
		cmd:     cmd,
		stdin:   stdin,
		channel: NewChannel(stdin, stdout),
		logger:  logger,
	}, nil
}

// Channel returns the framed channel to the helper.
func (h *Helper) Channel() *Channel {
	return h.channel
}

// Close signals shutdown by closing the helper's stdin and waits for
// it to exit.
func (h *Helper) Close() error {
	closeErr := h.stdin.Close()
	waitErr := h.cmd.Wait()
	h.logger.Info("import helper stopped", "pid", h.cmd.Process.Pid)
	if waitErr != nil {
		return fmt.Errorf("helper exit: %w", waitErr)
	}
	if closeErr != nil {
		return fmt.Errorf("helper stdin close: %w", closeErr)
	}
	return nil
}
