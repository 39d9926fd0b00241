package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/nanoncore/cmw-southbound/types"
)

// Older Comware releases only speak legacy key exchange and CBC ciphers
var (
	sshKeyExchanges = []string{
		"curve25519-sha256",
		"curve25519-sha256@libssh.org",
		"ecdh-sha2-nistp256",
		"ecdh-sha2-nistp384",
		"ecdh-sha2-nistp521",
		"diffie-hellman-group14-sha256",
		"diffie-hellman-group14-sha1",
		"diffie-hellman-group-exchange-sha256",
		"diffie-hellman-group-exchange-sha1",
		"diffie-hellman-group1-sha1",
	}
	sshCiphers = []string{
		"aes128-gcm@openssh.com",
		"aes256-gcm@openssh.com",
		"aes128-ctr",
		"aes192-ctr",
		"aes256-ctr",
		"aes128-cbc",
		"aes192-cbc",
		"aes256-cbc",
		"3des-cbc",
	}
	sshMACs = []string{
		"hmac-sha2-256-etm@openssh.com",
		"hmac-sha2-256",
		"hmac-sha1",
		"hmac-sha1-96",
	}
	sshHostKeyAlgorithms = []string{
		"rsa-sha2-256",
		"rsa-sha2-512",
		"ssh-rsa",
		"ecdsa-sha2-nistp256",
		"ecdsa-sha2-nistp384",
		"ecdsa-sha2-nistp521",
		"ssh-ed25519",
	}
)

// session open retry backoff; some devices refuse the first channel right after auth
var sshSessionBackoff = []time.Duration{0, 200 * time.Millisecond, 500 * time.Millisecond, time.Second}

// DialSSH opens an interactive shell over SSH with a wide vt100 PTY
func DialSSH(ctx context.Context, cfg *types.DeviceConfig) (Channel, error) {
	port := cfg.Port
	if port == 0 {
		port = types.DefaultSSHPort
	}
	addr := net.JoinHostPort(cfg.Address, strconv.Itoa(port))
	timeout := dialTimeout(ctx, cfg)

	password := cfg.Password
	sshConfig := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback:   ssh.InsecureIgnoreHostKey(),
		HostKeyAlgorithms: sshHostKeyAlgorithms,
		Timeout:           timeout,
		Config: ssh.Config{
			KeyExchanges: sshKeyExchanges,
			Ciphers:      sshCiphers,
			MACs:         sshMACs,
		},
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh dial", Err: err}
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh handshake", Err: err}
	}
	_ = conn.SetDeadline(time.Time{})
	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := newSessionWithRetry(ctx, client)
	if err != nil {
		client.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh session", Err: err}
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("vt100", 200, TerminalWidth, modes); err != nil {
		session.Close()
		client.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh pty", Err: err}
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh stdin", Err: err}
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh stdout", Err: err}
	}
	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "ssh shell", Err: err}
	}

	ch := newStream(stdout, stdin, func() error {
		session.Close()
		return client.Close()
	})
	go func() {
		_ = session.Wait()
		_ = ch.Close()
	}()
	return ch, nil
}

func newSessionWithRetry(ctx context.Context, client *ssh.Client) (*ssh.Session, error) {
	var lastErr error
	for _, d := range sshSessionBackoff {
		if d > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d):
			}
		}
		session, err := client.NewSession()
		if err == nil {
			return session, nil
		}
		lastErr = err
		if !strings.Contains(strings.ToLower(err.Error()), "prohibited") && !strings.Contains(err.Error(), "open failed") {
			break
		}
	}
	return nil, fmt.Errorf("open session: %w", lastErr)
}
