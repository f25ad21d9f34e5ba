package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vctt94/bisonbotkit/logging"

	"github.com/playbridge/bridged/pkg/server"
	"github.com/playbridge/bridged/pkg/utils"
)

func main() {
	var (
		host       string
		port       int
		seed       int64
		pacingMs   int
		datadir    string
		debugLevel string
	)
	flag.StringVar(&host, "host", "0.0.0.0", "Host to listen on")
	flag.IntVar(&port, "port", 3000, "Port to listen on")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.IntVar(&pacingMs, "pacingms", -1, "Delay between staged broadcasts in milliseconds (-1 = default 2000)")
	flag.StringVar(&datadir, "datadir", "", "Data directory for logs (empty = stderr only)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	logCfg := logging.LogConfig{DebugLevel: debugLevel}
	if datadir != "" {
		if err := utils.EnsureDataDirExists(datadir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to init datadir: %v\n", err)
			os.Exit(1)
		}
		logCfg.LogFile = filepath.Join(datadir, "logs", "bridged.log")
	}
	logBackend, err := logging.NewLogBackend(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log := logBackend.Logger("MAIN")

	pacing := server.DefaultPacingDelay
	if pacingMs >= 0 {
		pacing = time.Duration(pacingMs) * time.Millisecond
	}
	srv := server.NewServer(server.Config{
		LogBackend:  logBackend,
		PacingDelay: pacing,
		Seed:        seed,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)

	addr := fmt.Sprintf("%s:%d", host, port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen on %s: %v\n", addr, err)
		os.Exit(1)
	}

	httpSrv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(lis) }()
	log.Infof("listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
	srv.Shutdown()
}
