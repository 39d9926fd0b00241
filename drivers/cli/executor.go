package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// abortWindow bounds the cleanup after a cancelled command
const abortWindow = 2 * time.Second

// CommandRequest is one command to run on the CLI
type CommandRequest struct {
	Command string
	// Timeout overrides the session read timeout when positive
	Timeout time.Duration
	// ExpectMore marks output that is known to be paged. More markers are
	// answered either way; unexpected ones are logged.
	ExpectMore bool
}

// RawResponse is the cleaned output of one command
type RawResponse struct {
	Command string
	Echo    string
	Body    string
	Prompt  string
	Elapsed time.Duration
	// Pages counts the More markers answered
	Pages int
}

// Execute runs a command on a Ready session and returns its output with echo,
// paging artifacts and trailing prompt removed. A device rejection is returned
// as an UnsupportedCommandError alongside the response.
func (s *Session) Execute(ctx context.Context, req CommandRequest) (*RawResponse, error) {
	switch st := s.State(); st {
	case StateReady:
	case StateFailed:
		return nil, s.connErr("execute", errors.New("session failed"))
	default:
		return nil, &types.UsageError{Op: "execute", State: st.String()}
	}
	return s.execute(ctx, req)
}

func (s *Session) promptRE() *regexp.Regexp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pat.prompt
}

func (s *Session) execute(ctx context.Context, req CommandRequest) (*RawResponse, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}
	start := time.Now()
	deadline := start.Add(timeout)
	log := s.log.WithField("command", req.Command)

	s.flush()
	if err := s.send(req.Command + "\n"); err != nil {
		s.fail(err)
		return nil, s.connErr("send", err)
	}

	cases := []*regexp.Regexp{s.promptRE(), s.pat.more, s.pat.confirm}
	var raw strings.Builder
	pages := 0
	for {
		out, match, idx, err := s.await(ctx, cases, deadline)
		raw.WriteString(out)
		if err != nil {
			switch {
			case errors.Is(err, errAwaitTimeout):
				logging.DebugOutput(log, req.Command, raw.String(), 5, 5)
				return nil, &types.CommandTimeoutError{Command: req.Command, Timeout: timeout}
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				s.abort()
				return nil, fmt.Errorf("command %q: %w", req.Command, err)
			default:
				s.fail(err)
				return nil, s.connErr("read", err)
			}
		}

		switch idx {
		case 0:
			s.learnPrompt(match[1])
			resp := buildResponse(req.Command, raw.String(), strings.TrimSpace(match[1]), pages)
			resp.Elapsed = time.Since(start)
			log.WithFields(logrus.Fields{"elapsed": resp.Elapsed, "pages": pages}).Debug("command complete")
			logging.DebugOutput(log, req.Command, resp.Body, 10, 5)
			return resp, detectRejection(resp)
		case 1:
			if pages == 0 && !req.ExpectMore {
				log.Debug("paging still active")
			}
			pages++
			err = s.send(" ")
		case 2:
			log.Debug("declining confirmation prompt")
			err = s.send("N\n")
		}
		if err != nil {
			s.fail(err)
			return nil, s.connErr("send", err)
		}
	}
}

// flush drops anything left in the read buffer from a previous exchange
func (s *Session) flush() {
	_, _, _, _ = s.await(context.Background(), []*regexp.Regexp{matchNothing}, time.Now().Add(time.Millisecond))
}

var matchNothing = regexp.MustCompile(`$^.`)

// abort brings a cancelled command back to the prompt without closing the
// channel. The session fails if the prompt does not come back.
func (s *Session) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), abortWindow)
	defer cancel()
	if err := s.Resync(ctx, abortWindow); err != nil {
		s.fail(err)
	}
}

// buildResponse strips paging artifacts, the echoed command and the trailing prompt
func buildResponse(command, raw, prompt string, pages int) *RawResponse {
	text := common.CleanOutput(raw)
	lines := strings.Split(text, "\n")

	resp := &RawResponse{Command: command, Prompt: prompt, Pages: pages}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" && strings.TrimSpace(command) != "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && isEcho(lines[0], command) {
		resp.Echo = strings.TrimSpace(lines[0])
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == prompt {
		lines = lines[:n-1]
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	resp.Body = strings.Join(lines, "\n")
	return resp
}

func isEcho(line, command string) bool {
	l := strings.TrimSpace(line)
	c := strings.TrimSpace(command)
	return l == c || (c != "" && strings.HasSuffix(l, c))
}

func detectRejection(resp *RawResponse) error {
	if m := rejectionRegex.FindString(resp.Body); m != "" {
		return &types.UnsupportedCommandError{Command: resp.Command, Message: strings.TrimSpace(m)}
	}
	return nil
}
