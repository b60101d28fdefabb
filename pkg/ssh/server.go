//go:build !windows

package ssh

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/creack/pty"
	"github.com/gliderlabs/ssh"
	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"
)

const (
	ServerIdleTimeout = 10 * time.Minute
)

// SSHServer lets anyone with an ssh client play. Each session runs the
// sweepterm client in a pty, connected to the game server.
type SSHServer struct {
	ListenAddress string
	HostKeyPath   string
	ClientBinary  string
	GameAddress   string

	server *ssh.Server
}

func (s *SSHServer) Host() error {
	if s.ListenAddress == "" {
		return errors.New("ssh: listen address must be specified")
	}

	signer, err := LoadHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	s.server = &ssh.Server{
		Addr:        s.ListenAddress,
		IdleTimeout: ServerIdleTimeout,
		Handler:     s.handle,
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			log.WithFields(log.Fields{
				"user":        ctx.User(),
				"fingerprint": gossh.FingerprintSHA256(key),
			}).Debug("Public key offered")
			return true
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			return true
		},
		KeyboardInteractiveHandler: func(ctx ssh.Context, challenger gossh.KeyboardInteractiveChallenge) bool {
			return true
		},
	}
	s.server.AddHostKey(signer)

	log.Infof("SSH listening on %s", s.ListenAddress)
	err = s.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *SSHServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *SSHServer) handle(sshSession ssh.Session) {
	ptyReq, winCh, isPty := sshSession.Pty()
	if !isPty {
		io.WriteString(sshSession, "failed to start sweepterm: non-interactive terminals are not supported\n")

		sshSession.Exit(1)
		return
	}

	cmdCtx, cancelCmd := context.WithCancel(sshSession.Context())
	defer cancelCmd()

	cmd := exec.CommandContext(cmdCtx, s.ClientBinary, ClientArgs(sshSession.User(), s.GameAddress)...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("TERM=%s", ptyReq.Term))

	f, err := pty.StartWithSize(cmd, winsize(ptyReq.Window))
	if err != nil {
		log.WithError(err).Error("Failed to start client")
		io.WriteString(sshSession, "failed to initialize pseudo-terminal\n")
		sshSession.Exit(1)
		return
	}
	defer f.Close()

	log.WithFields(log.Fields{"user": sshSession.User(), "remote": sshSession.RemoteAddr()}).Info("SSH session started")

	go func() {
		for win := range winCh {
			if err := pty.Setsize(f, winsize(win)); err != nil {
				log.WithError(err).Debug("Failed to resize pty")
			}
		}
	}()

	go func() {
		io.Copy(f, sshSession)
	}()
	io.Copy(sshSession, f)

	cancelCmd()
	cmd.Wait()
	sshSession.Exit(0)
}

func winsize(w ssh.Window) *pty.Winsize {
	return &pty.Winsize{Rows: uint16(w.Height), Cols: uint16(w.Width)}
}

// ClientArgs are the flags passed to the client binary for one ssh user
func ClientArgs(user, gameAddress string) []string {
	args := []string{"--connect", gameAddress}
	if user != "" {
		args = append(args, "--nick", user)
	}
	return args
}

// LoadHostKey reads the private key at path, creating an ed25519 key there
// when the file does not exist yet
func LoadHostKey(path string) (gossh.Signer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return generateHostKey(path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read host key: %w", err)
	}

	signer, err := gossh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host key %s: %w", path, err)
	}
	return signer, nil
}

func generateHostKey(path string) (gossh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate host key: %w", err)
	}

	block, err := gossh.MarshalPrivateKey(priv, "sweepterm host key")
	if err != nil {
		return nil, fmt.Errorf("failed to encode host key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create host key directory: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		return nil, fmt.Errorf("failed to write host key: %w", err)
	}
	log.Infof("Generated host key at %s", path)

	signer, err := gossh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to load host key: %w", err)
	}
	return signer, nil
}
