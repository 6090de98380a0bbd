package database

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"chem-trans-api/config"
)

var tunnelSeq atomic.Int64

// Tunnel ist eine SSH-Verbindung, über die der MySQL-Treiber seine Verbindungen aufbaut.
// Jede Verbindung des Pools wird als eigener direct-tcpip Kanal geöffnet.
type Tunnel struct {
	client  *ssh.Client
	network string
}

// OpenTunnel verbindet sich mit dem SSH-Host und registriert eine Dial-Funktion beim Treiber.
func OpenTunnel(cfg *config.Config, log *zap.Logger) (*Tunnel, error) {
	clientCfg, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(cfg.SSHHost, strconv.Itoa(cfg.SSHPort))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}

	// Der Netzwerkname muss pro Tunnel eindeutig sein, der Treiber hält eine globale Registry.
	t := &Tunnel{
		client:  client,
		network: fmt.Sprintf("ssh%d", tunnelSeq.Add(1)),
	}
	mysqldriver.RegisterDialContext(t.network, func(ctx context.Context, target string) (net.Conn, error) {
		return client.DialContext(ctx, "tcp", target)
	})
	log.Info("SSH tunnel established", zap.String("ssh_host", addr), zap.String("remote", net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))))
	return t, nil
}

// Network ist der Name, unter dem der Tunnel im DSN angesprochen wird.
func (t *Tunnel) Network() string { return t.network }

// Close beendet die SSH-Verbindung. Die registrierte Dial-Funktion bleibt stehen
// und liefert danach nur noch Fehler.
func (t *Tunnel) Close() error {
	return t.client.Close()
}

func sshClientConfig(cfg *config.Config) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.SSHKeyFile != "" {
		key, err := os.ReadFile(cfg.SSHKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.SSHPassword != "" {
		auth = append(auth, ssh.Password(cfg.SSHPassword))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.SSHKnownHosts != "" {
		cb, err := knownhosts.New(cfg.SSHKnownHosts)
		if err != nil {
			return nil, fmt.Errorf("load known_hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            cfg.SSHUser,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         15 * time.Second,
	}, nil
}
