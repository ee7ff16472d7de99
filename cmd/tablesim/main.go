package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/tablesim-client/internal/config"
	"github.com/DoyleJ11/tablesim-client/internal/httpapi"
	"github.com/DoyleJ11/tablesim-client/internal/logging"
	"github.com/DoyleJ11/tablesim-client/internal/session"
	"github.com/DoyleJ11/tablesim-client/internal/transport"
	"github.com/DoyleJ11/tablesim-client/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tablesim:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The adapter's callbacks only fire from Run, after sess is set.
	var sess *session.Session
	conn := transport.New(cfg.ServerURL, transport.Callbacks{
		OnOpen:    func() { sess.Post(session.ConnOpened{}) },
		OnMessage: func(data []byte) { sess.Post(session.Frame{Data: data}) },
		OnClose:   func(err error) { sess.Post(session.ConnClosed{Err: err}) },
		OnError:   func(err error) { sess.Post(session.ConnFailed{Err: err}) },
	}, log.Named("transport"))

	sess = session.New(ctx, session.Options{
		DragDelay:    cfg.DragDelay,
		MoveInterval: cfg.MoveInterval,
		HandInterval: cfg.HandInterval,
	}, conn, log.Named("session"))
	log.Info("starting", zap.String("server", cfg.ServerURL), zap.String("session", sess.ID()))

	term, err := view.Open(cfg.CellWidth, cfg.CellHeight, log.Named("view"))
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer term.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A lost connection is shown in the view; it does not end the client.
		if err := conn.Run(gctx); err != nil {
			log.Error("transport stopped", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return term.Run(gctx, sess)
	})

	g.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		sess.Post(session.Shutdown{})
		return nil
	})

	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: httpapi.SetupRoutes(sess)}
		g.Go(func() error {
			log.Info("debug api listening", zap.String("addr", cfg.DebugAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
