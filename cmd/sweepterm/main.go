package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/qnkhuat/sweepterm/pkg"
	"github.com/qnkhuat/sweepterm/pkg/config"
	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/qnkhuat/sweepterm/pkg/store"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const defaultLogPath = "sweepterm.log"

var (
	configPath string
	logDebug   bool
	dump       bool

	connectAddress string
	nickname       string
	theme          string
	database       string
	logPath        string
	size           int
	mines          int
	seed           int64
)

func init() {
	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.BoolVar(&logDebug, "debug", false, "enable debug logging")
	flag.BoolVar(&dump, "dump", false, "print a fully revealed board and exit")

	flag.StringVar(&connectAddress, "connect", "", "play on a remote server instead of locally")
	flag.StringVar(&nickname, "nick", "", "nickname")
	flag.StringVar(&theme, "theme", "", "color theme")
	flag.StringVar(&database, "db", "", "path to sqlite result database for local games")
	flag.StringVar(&logPath, "log", "", "path to log file (default "+defaultLogPath+")")
	flag.IntVar(&size, "size", 0, "board size for local games")
	flag.IntVar(&mines, "mines", 0, "number of mines for local games")
	flag.Int64Var(&seed, "seed", 0, "random seed for local games, 0 for time based")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "connect":
			cfg.Connect = connectAddress
		case "nick":
			cfg.Nickname = nickname
		case "theme":
			cfg.Theme = theme
		case "db":
			cfg.Database = database
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

// localServer starts an in-process game server and returns the client end
// of a pipe to it
func localServer(ctx context.Context, cfg config.Config) (net.Conn, store.Store) {
	var st store.Store = store.NewMemoryStore()
	if cfg.Database != "" {
		sqlite, err := store.NewSQLiteStore(cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		if err := sqlite.Migrate(ctx); err != nil {
			log.Fatal(err)
		}
		st = sqlite
	}

	server := pkg.NewServer(cfg, st)
	serverConn, clientConn := net.Pipe()
	go server.HandleConn(ctx, serverConn)

	return clientConn, st
}

func main() {
	flag.Parse()
	cfg := loadConfig()

	if dump {
		g := grid.New(cfg.Size, cfg.Mines, grid.NewRand(cfg.Seed))
		fmt.Println(g.Render(true))
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "failed to start sweepterm: non-interactive terminals are not supported")
		os.Exit(1)
	}

	// The UI owns the terminal, so the client always logs to a file
	if cfg.LogPath == "" {
		cfg.LogPath = defaultLogPath
	}
	if err := pkg.InitLog(cfg.LogPath, "client", logDebug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("New client")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cl := pkg.NewClient(cfg.LoadTheme(), cfg.Nickname)
	if cfg.Connect != "" {
		if err := cl.Connect(cfg.Connect); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		conn, st := localServer(ctx, cfg)
		defer st.Close()
		cl.Attach(conn)
	}

	// Down when receive killed signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM)
	go func() {
		<-sigc
		cl.Quit()
	}()

	if err := cl.Run(); err != nil {
		log.WithError(err).Error("UI stopped")
	}
	cl.Disconnect()
}
