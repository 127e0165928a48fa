package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

var defaultPrivateKeyFiles = []string{
	"id_ed25519",
	"id_ecdsa",
	"id_rsa",
}

// ParseTarget splits a user@host destination.
func ParseTarget(target string) (user, host string, err error) {
	if strings.TrimSpace(target) == "" {
		return "", "", fmt.Errorf("remote target is required")
	}

	user, host, ok := strings.Cut(target, "@")
	if !ok || user == "" || host == "" {
		return "", "", fmt.Errorf("invalid remote target %q: expected user@host", target)
	}
	return user, host, nil
}

// Prompter asks yes/no questions and reads secrets. Nothing is asked when
// Interactive reports false.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive func() bool
	ReadSecret  func() ([]byte, error)
}

// TerminalPrompter prompts on stderr and reads from stdin.
func TerminalPrompter() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: func() bool { return term.IsTerminal(fd) },
		ReadSecret:  func() ([]byte, error) { return term.ReadPassword(fd) },
	}
}

func (p *Prompter) interactive() bool {
	return p != nil && p.Interactive != nil && p.Interactive()
}

// Confirm prints question and reports whether the answer was yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.interactive() {
		return false, fmt.Errorf("cannot prompt for host key trust: stdin is not a terminal")
	}

	fmt.Fprint(p.Out, question)
	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("host key prompt failed: %w", err)
	}

	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}

// Secret prints label and reads a line without echo.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.interactive() || p.ReadSecret == nil {
		return "", fmt.Errorf("cannot prompt for SSH password: stdin is not a terminal")
	}

	fmt.Fprint(p.Out, label)
	b, err := p.ReadSecret()
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	return string(b), nil
}

// HostKeys verifies server keys against a known_hosts file. Unknown hosts
// are trusted on first use after confirmation; changed keys are replaced
// only when the user agrees. Batch mode never asks and fails instead.
type HostKeys struct {
	Path     string
	Batch    bool
	Prompter *Prompter
	Logger   *slog.Logger
}

// Callback returns the ssh.HostKeyCallback for host:port.
func (h *HostKeys) Callback(host string, port int) (ssh.HostKeyCallback, error) {
	path, err := ensureKnownHostsFile(h.Path)
	if err != nil {
		return nil, err
	}

	verify, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load known_hosts: %w", err)
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := verify(hostname, remote, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if !errors.As(err, &keyErr) {
			return fmt.Errorf("host key verification failed: %w", err)
		}

		address := knownHostAddress(host, port)
		presented := ssh.FingerprintSHA256(key)

		if len(keyErr.Want) == 0 {
			if h.Batch {
				return fmt.Errorf("unknown host key for %s (%s); run ssh once to trust it or disable --ssh-batch", address, presented)
			}
			ok, err := h.Prompter.Confirm(fmt.Sprintf(
				"The authenticity of host '%s' can't be established.\n%s key fingerprint is %s.\nTrust this host and continue connecting (yes/no)? ",
				address, key.Type(), presented,
			))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("host key for %s was not trusted", address)
			}
			logger.Info("trusting new host key", "host", address, "fingerprint", presented)
			return addKnownHost(path, host, port, key)
		}

		expected := make([]string, 0, len(keyErr.Want))
		for _, want := range keyErr.Want {
			expected = append(expected, ssh.FingerprintSHA256(want.Key))
		}
		if h.Batch {
			return fmt.Errorf("host key mismatch for %s: expected %s, presented %s",
				address, strings.Join(expected, ", "), presented)
		}

		ok, err := h.Prompter.Confirm(fmt.Sprintf(
			"WARNING: HOST KEY CHANGED for '%s'.\nExpected: %s\nPresented: %s\nReplace stored key and continue (yes/no)? ",
			address, strings.Join(expected, ", "), presented,
		))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("host key mismatch for %s", address)
		}
		logger.Warn("replacing changed host key", "host", address, "fingerprint", presented)
		return replaceKnownHost(path, host, port, key)
	}, nil
}

// ensureKnownHostsFile creates path, or ~/.ssh/known_hosts when path is empty.
func ensureKnownHostsFile(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory for known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return "", fmt.Errorf("cannot create known_hosts: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("cannot access known_hosts: %w", err)
	}
	return path, nil
}

func knownHostAddress(host string, port int) string {
	if port == 22 {
		return host
	}
	return fmt.Sprintf("[%s]:%d", host, port)
}

func addKnownHost(path, host string, port int, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("cannot update known_hosts: %w", err)
	}
	defer f.Close()

	line := knownhosts.Line([]string{knownHostAddress(host, port)}, key)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("cannot write known_hosts entry: %w", err)
	}
	return nil
}

func replaceKnownHost(path, host string, port int, key ssh.PublicKey) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read known_hosts: %w", err)
	}

	updated := removeKnownHostEntries(data, host, port)
	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}
	updated = append(updated, knownhosts.Line([]string{knownHostAddress(host, port)}, key)...)
	updated = append(updated, '\n')

	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return fmt.Errorf("cannot write known_hosts: %w", err)
	}
	return nil
}

// removeKnownHostEntries drops every line naming host:port, markers included.
func removeKnownHostEntries(data []byte, host string, port int) []byte {
	candidates := map[string]bool{
		host:                               port == 22,
		fmt.Sprintf("[%s]:%d", host, port): true,
	}

	lines := strings.Split(string(data), "\n")
	keep := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			keep = append(keep, line)
			continue
		}

		hostField := fields[0]
		if strings.HasPrefix(hostField, "@") {
			if len(fields) < 2 {
				keep = append(keep, line)
				continue
			}
			hostField = fields[1]
		}

		drop := false
		for _, h := range strings.Split(hostField, ",") {
			if candidates[h] {
				drop = true
				break
			}
		}
		if !drop {
			keep = append(keep, line)
		}
	}
	return []byte(strings.Join(keep, "\n"))
}

// Credentials builds the SSH auth chain: agent, default keys, then
// password and keyboard-interactive unless in batch mode.
type Credentials struct {
	User     string
	Host     string
	Batch    bool
	Prompter *Prompter
	// KeyDir overrides ~/.ssh as the place to look for private keys.
	KeyDir string

	mu      sync.Mutex
	cached  string
	hasPass bool
}

// Methods returns the auth methods to offer, in order.
func (c *Credentials) Methods() ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 4)

	if m := agentAuthMethod(); m != nil {
		methods = append(methods, m)
	}
	if signers := c.keySigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	if !c.Batch {
		methods = append(methods,
			ssh.PasswordCallback(c.password),
			ssh.KeyboardInteractive(c.keyboardInteractive),
		)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH auth methods available (configure ssh-agent or private keys, or disable --ssh-batch)")
	}
	return methods, nil
}

func agentAuthMethod() ssh.AuthMethod {
	sock := strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK"))
	if sock == "" {
		return nil
	}

	return ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return agent.NewClient(conn).Signers()
	})
}

// keySigners loads unencrypted default keys. Keys behind a passphrase are
// left to the agent.
func (c *Credentials) keySigners() []ssh.Signer {
	dir := c.KeyDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, ".ssh")
	}

	var signers []ssh.Signer
	for _, name := range defaultPrivateKeyFiles {
		pem, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

// password asks once per connection and reuses the answer for
// keyboard-interactive rounds.
func (c *Credentials) password() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasPass {
		return c.cached, nil
	}

	pass, err := c.Prompter.Secret(fmt.Sprintf("%s@%s's password: ", c.User, c.Host))
	if err != nil {
		return "", err
	}
	c.cached, c.hasPass = pass, true
	return pass, nil
}

func (c *Credentials) keyboardInteractive(_, _ string, questions []string, echos []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		if i < len(echos) && echos[i] {
			continue
		}
		pass, err := c.password()
		if err != nil {
			return nil, err
		}
		answers[i] = pass
	}
	return answers, nil
}
