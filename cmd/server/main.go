package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/qnkhuat/sweepterm/pkg"
	"github.com/qnkhuat/sweepterm/pkg/api"
	"github.com/qnkhuat/sweepterm/pkg/config"
	"github.com/qnkhuat/sweepterm/pkg/ssh"
	"github.com/qnkhuat/sweepterm/pkg/store"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath string
	logDebug   bool

	listenTCP  string
	listenSSH  string
	listenHTTP string
	database   string
	clientPath string
	hostKey    string
	logPath    string
	size       int
	mines      int
	seed       int64
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.BoolVar(&logDebug, "debug", false, "enable debug logging")

	flag.StringVar(&listenTCP, "listen-tcp", "", "host game server on network address")
	flag.StringVar(&listenSSH, "listen-ssh", "", "host SSH server on network address")
	flag.StringVar(&listenHTTP, "listen-http", "", "serve the stats API on network address, empty to disable")
	flag.StringVar(&database, "db", "", "path to sqlite result database (in memory when empty)")
	flag.StringVar(&clientPath, "client", "", "path to sweepterm client, SSH is disabled without it")
	flag.StringVar(&hostKey, "host-key", "", "path to SSH host key, generated when missing")
	flag.StringVar(&logPath, "log", "", "path to log file, stderr when empty")
	flag.IntVar(&size, "size", 0, "board size")
	flag.IntVar(&mines, "mines", 0, "number of mines")
	flag.Int64Var(&seed, "seed", 0, "random seed, 0 for time based")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen-tcp":
			cfg.ListenTCP = listenTCP
		case "listen-ssh":
			cfg.ListenSSH = listenSSH
		case "listen-http":
			cfg.ListenHTTP = listenHTTP
		case "db":
			cfg.Database = database
		case "client":
			cfg.ClientPath = clientPath
		case "host-key":
			cfg.HostKey = hostKey
		case "log":
			cfg.LogPath = logPath
		case "size":
			cfg.Size = size
		case "mines":
			cfg.Mines = mines
		case "seed":
			cfg.Seed = seed
		}
	})
	cfg.Validate()
	return cfg
}

func openStore(ctx context.Context, path string) store.Store {
	if path == "" {
		return store.NewMemoryStore()
	}

	st, err := store.NewSQLiteStore(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := st.Migrate(ctx); err != nil {
		log.Fatal(err)
	}
	return st
}

// dialAddress turns a listen address such as ":1998" into one a local
// client can dial
func dialAddress(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil || host != "" {
		return listen
	}
	return net.JoinHostPort("localhost", port)
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	if cfg.LogPath != "" {
		if err := pkg.InitLog(cfg.LogPath, "server", logDebug); err != nil {
			log.Fatal(err)
		}
	} else if logDebug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.ListenTCP == "" {
		log.Fatal("a game server address is required (--listen-tcp)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg.Database)
	defer st.Close()

	server := pkg.NewServer(cfg, st)
	go server.CleanIdleMatches(ctx, pkg.CleanInterval)
	go func() {
		if err := server.Listen(ctx, cfg.ListenTCP); err != nil {
			log.Fatal(err)
		}
	}()

	var sshServer *ssh.SSHServer
	// SSH needs a client binary to run for each session
	if cfg.ClientPath != "" && cfg.ListenSSH != "" {
		hostKeyPath := cfg.HostKey
		if hostKeyPath == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				log.Fatal(err)
			}
			hostKeyPath = filepath.Join(homeDir, ".ssh", "sweepterm_ed25519")
		}

		sshServer = &ssh.SSHServer{
			ListenAddress: cfg.ListenSSH,
			HostKeyPath:   hostKeyPath,
			ClientBinary:  cfg.ClientPath,
			GameAddress:   dialAddress(cfg.ListenTCP),
		}
		go func() {
			if err := sshServer.Host(); err != nil {
				log.Fatal(err)
			}
		}()
	}

	var httpServer *http.Server
	if cfg.ListenHTTP != "" {
		httpServer = &http.Server{
			Addr:    cfg.ListenHTTP,
			Handler: api.NewServer(st, server).Routes(),
		}
		go func() {
			log.Infof("Stats API listening on %s", cfg.ListenHTTP)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err)
			}
		}()
	}

	log.Info("Server started")
	<-ctx.Done()
	log.Info("Shutting down")

	server.StopListening()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sshServer != nil {
		if err := sshServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("SSH shutdown")
		}
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP shutdown")
		}
	}
}
