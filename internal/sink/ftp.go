package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPConfig locates the remote drop.
type FTPConfig struct {
	Addr       string // host or host:port; port defaults to 21
	User       string
	Password   string
	RemotePath string
	Timeout    time.Duration
}

// FTP uploads the snapshot as a JSON document to an FTP server. Each publish
// opens a fresh connection; the servers these drops land on tend to kill
// idle sessions.
type FTP struct {
	cfg FTPConfig
}

// NewFTP creates the sink.
func NewFTP(cfg FTPConfig) *FTP {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		cfg.Addr = net.JoinHostPort(cfg.Addr, "21")
	}
	return &FTP{cfg: cfg}
}

// Name identifies the sink in status reports.
func (s *FTP) Name() string { return "ftp" }

// Publish serializes the snapshot and stores it at the configured path.
func (s *FTP) Publish(ctx context.Context, header []string, rows [][]string) error {
	payload, err := json.Marshal(rowObjects(header, rows))
	if err != nil {
		return fmt.Errorf("marshal ftp snapshot: %w", err)
	}

	conn, err := ftp.Dial(s.cfg.Addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("dial ftp %s: %w", s.cfg.Addr, err)
	}
	defer func() {
		_ = conn.Quit()
	}()

	if s.cfg.User != "" {
		if err := conn.Login(s.cfg.User, s.cfg.Password); err != nil {
			return fmt.Errorf("ftp login: %w", err)
		}
	}
	if err := conn.Stor(s.cfg.RemotePath, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("ftp store %s: %w", s.cfg.RemotePath, err)
	}
	return nil
}
