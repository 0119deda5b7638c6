package device

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// sshSession runs each command in its own exec channel. RouterOS accepts a
// console command as the exec payload and closes the channel when the
// command completes.
type sshSession struct {
	client *ssh.Client
}

func hostKeyCallback(dev Device, knownHostsFile string) (ssh.HostKeyCallback, error) {
	if !dev.StrictKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if knownHostsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		knownHostsFile = filepath.Join(home, ".ssh", "known_hosts")
	}
	return knownhosts.New(knownHostsFile)
}

func dialSSH(ctx context.Context, dev Device, knownHostsFile string) (Session, error) {
	cb, err := hostKeyCallback(dev, knownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("loading known hosts: %w", err)
	}
	config := &ssh.ClientConfig{
		User: dev.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(dev.Password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = dev.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: cb,
		Timeout:         dev.Timeout,
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", dev.Address())
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", dev.Address(), err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, dev.Address(), config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", dev.Address(), err)
	}
	return &sshSession{client: ssh.NewClient(c, chans, reqs)}, nil
}

// SendCommand runs cmd and returns its combined output. The SSH session is
// created per call.
func (s *sshSession) SendCommand(ctx context.Context, cmd string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	return runWithContext(ctx, func() (string, error) {
		output, err := session.CombinedOutput(cmd)
		if err != nil {
			return string(output), fmt.Errorf("SSH exec '%s': %w", cmd, err)
		}
		return string(output), nil
	})
}

func (s *sshSession) Close() error {
	return s.client.Close()
}
