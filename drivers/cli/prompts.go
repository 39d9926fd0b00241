package cli

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in Comware patterns. Prompts are <HOST> in user view and [HOST] or
// [HOST-context] in system view; some releases prefix ~ or * to mark
// uncommitted configuration.
const (
	DefaultPromptPattern      = `(?:^|[\r\n])[^\S\r\n]*(<[^<>\r\n]+>|\[[^\[\]\r\n]+\])[^\S\r\n]*$`
	DefaultMorePattern        = `-{2,}[ \t]*(?i:more)[ \t]*-{2,}[^\S\r\n]*$`
	DefaultUsernamePattern    = `(?i)(user ?name|login)\s*:\s*$`
	DefaultPasswordPattern    = `(?i)password\s*:\s*$`
	DefaultAuthFailurePattern = `(?i)(authentication failed|login failed|access denied|login incorrect|invalid (user|password))`

	pressEnterPattern = `(?i)press (enter|return) to get started`
	confirmPattern    = `(?i)\[Y/N\]\s*:?\s*$`
	superFailPattern  = `(?i)(password is wrong|permission denied|failed|invalid password)`
)

// DefaultSetupCommands run after login to make output machine friendly
var DefaultSetupCommands = []string{"screen-length disable"}

// TerminalWidth is the PTY width requested on SSH, wide enough that tables do not wrap
const TerminalWidth = 511

// rejectionRegex matches the device's command rejection messages
var rejectionRegex = regexp.MustCompile(`(?mi)^\s*%\s*(unrecognized command|incomplete command|too many parameters|wrong parameter|ambiguous command|unknown command)[^\n]*`)

type patterns struct {
	prompt    *regexp.Regexp
	more      *regexp.Regexp
	username  *regexp.Regexp
	password  *regexp.Regexp
	authFail  *regexp.Regexp
	enter     *regexp.Regexp
	confirm   *regexp.Regexp
	superFail *regexp.Regexp

	customPrompt bool
}

func compilePatterns(prompt, more, username, password, authFail string) (*patterns, error) {
	p := &patterns{customPrompt: prompt != ""}
	for _, item := range []struct {
		dst  **regexp.Regexp
		expr string
		def  string
		name string
	}{
		{&p.prompt, prompt, DefaultPromptPattern, "prompt"},
		{&p.more, more, DefaultMorePattern, "more"},
		{&p.username, username, DefaultUsernamePattern, "username"},
		{&p.password, password, DefaultPasswordPattern, "password"},
		{&p.authFail, authFail, DefaultAuthFailurePattern, "auth failure"},
		{&p.enter, "", pressEnterPattern, "press enter"},
		{&p.confirm, "", confirmPattern, "confirm"},
		{&p.superFail, "", superFailPattern, "super failure"},
	} {
		expr := item.expr
		if expr == "" {
			expr = item.def
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", item.name, expr, err)
		}
		*item.dst = re
	}
	if p.customPrompt && p.prompt.NumSubexp() < 1 {
		// the executor reads the prompt text from the first group
		re, err := regexp.Compile("(" + prompt + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid prompt pattern %q: %w", prompt, err)
		}
		p.prompt = re
	}
	return p, nil
}

// hostPromptRegexp matches only the prompts of host
func hostPromptRegexp(host string) *regexp.Regexp {
	h := regexp.QuoteMeta(host)
	return regexp.MustCompile(`(?:^|[\r\n])[^\S\r\n]*(<` + h + `>|\[[~*]?` + h + `(?:-[^\[\]\r\n]*)?\])[^\S\r\n]*$`)
}

// hostnameFromPrompt extracts HOST from <HOST> or [HOST]
func hostnameFromPrompt(prompt string) string {
	p := strings.TrimSpace(prompt)
	if len(p) >= 2 && (p[0] == '<' || p[0] == '[') {
		p = p[1 : len(p)-1]
	}
	return strings.TrimLeft(p, "~*")
}
