//go:build windows

package ssh

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// SSH server is unsupported on Windows

type SSHServer struct {
	ListenAddress string
	HostKeyPath   string
	ClientBinary  string
	GameAddress   string
}

func (s *SSHServer) Host() error {
	log.Warn("SSH server is not supported on Windows")
	return nil
}

func (s *SSHServer) Shutdown(ctx context.Context) error {
	return nil
}
