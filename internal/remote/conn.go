package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const defaultTimeout = 15 * time.Second

// Config configures an SSH connection for remote scanning and trashing.
type Config struct {
	Target      string
	Port        int
	BatchMode   bool
	Timeout     time.Duration
	ScanTimeout time.Duration
	// KnownHosts overrides ~/.ssh/known_hosts.
	KnownHosts string
}

// sftpClient is the subset of *sftp.Client the lister and the trash need.
type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	Lstat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
	MkdirAll(string) error
	Rename(oldname, newname string) error
	Remove(string) error
	CreateExclusive(string) (io.WriteCloser, error)
}

// clientAdapter narrows *sftp.Client to sftpClient.
type clientAdapter struct {
	*sftp.Client
}

func (c clientAdapter) CreateExclusive(p string) (io.WriteCloser, error) {
	return c.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

var dialSFTPFunc = dialSFTP

// Conn is an open SFTP session. Its lister and trash share one connection.
type Conn struct {
	cfg    Config
	client sftpClient
	closer io.Closer
	logger *slog.Logger
}

// Connect dials cfg.Target and starts the SFTP subsystem. Questions about
// unknown host keys and passwords go through prompter.
func Connect(ctx context.Context, cfg Config, prompter *Prompter, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if prompter == nil {
		prompter = TerminalPrompter()
	}

	client, closer, err := dialSFTPFunc(ctx, cfg, prompter, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("sftp session open", "target", cfg.Target, "port", cfg.Port)
	return &Conn{cfg: cfg, client: client, closer: closer, logger: logger}, nil
}

// Lister returns a scanner.Lister over the connection.
func (c *Conn) Lister() *SFTPLister {
	return &SFTPLister{client: c.client}
}

// Trash returns a trasher that moves folders into the remote user's trash.
func (c *Conn) Trash() *SFTPTrash {
	return NewSFTPTrash(c.client, "")
}

// ScanContext bounds a remote scan by the configured scan timeout.
func (c *Conn) ScanContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.ScanTimeout > 0 {
		return context.WithTimeout(parent, c.cfg.ScanTimeout)
	}
	return context.WithCancel(parent)
}

// Close ends the SFTP session and the SSH connection.
func (c *Conn) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	c.logger.Debug("closing sftp session", "target", c.cfg.Target)
	return c.closer.Close()
}

func dialSFTP(ctx context.Context, cfg Config, prompter *Prompter, logger *slog.Logger) (sftpClient, io.Closer, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535")
	}

	user, host, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}

	hosts := &HostKeys{Path: cfg.KnownHosts, Batch: cfg.BatchMode, Prompter: prompter, Logger: logger}
	hostCB, err := hosts.Callback(host, cfg.Port)
	if err != nil {
		return nil, nil, err
	}

	creds := &Credentials{User: user, Host: host, Batch: cfg.BatchMode, Prompter: prompter}
	auth, err := creds.Methods()
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))
	logger.Debug("dialing ssh", "addr", addr, "user", user, "methods", len(auth))
	sshClient, err := connectSSH(dialCtx, addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}

	return clientAdapter{client}, &remoteCloser{ssh: sshClient, sftp: client}, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Closing the conn is the only way to interrupt the handshake.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			retErr = err
		}
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}
