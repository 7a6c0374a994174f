// inputsd runs a standalone SPICE-style inputs channel: it accepts raw TCP
// and WebSocket connections carrying the same framed binary protocol,
// attaches a local device back-end, and dispatches every client message
// against a shared Channel.
package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/redsgate/inputschannel/api/pkg/inputs"
	"github.com/redsgate/inputschannel/api/pkg/inputs/backend"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("starting inputsd")

	tcpAddr := os.Getenv("INPUTSD_TCP_ADDR")
	if tcpAddr == "" {
		tcpAddr = ":5924"
	}
	wsAddr := os.Getenv("INPUTSD_WS_ADDR")
	if wsAddr == "" {
		wsAddr = ":5925"
	}

	collab := newStandaloneCollaborators(logger)
	channel := inputs.NewChannel(collab, logger, inputs.Config{})
	defer channel.Stop()

	if dev, err := backend.NewWayland(logger); err != nil {
		logger.Warn("wayland virtual input unavailable, running without a device back-end", "error", err)
	} else {
		defer dev.Close()
		if err := channel.AttachKeyboard(dev); err != nil {
			logger.Error("attach keyboard", "error", err)
		}
		if err := channel.AttachMouse(dev); err != nil {
			logger.Error("attach mouse", "error", err)
		}
		if err := channel.AttachTablet(dev); err != nil {
			logger.Error("attach tablet", "error", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runTCPListener(ctx, tcpAddr, channel, logger); err != nil {
			logger.Error("tcp listener stopped", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runWebSocketListener(ctx, wsAddr, channel, logger); err != nil {
			logger.Error("websocket listener stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down inputsd")
	wg.Wait()
}

func runTCPListener(ctx context.Context, addr string, channel *inputs.Channel, logger *slog.Logger) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	logger.Info("tcp listener ready", "addr", addr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			if err := inputs.ConfigureSocket(tc); err != nil {
				logger.Warn("configure socket, rejecting client", "error", err)
				conn.Close()
				continue
			}
		}
		go serveConn(ctx, conn, channel, logger)
	}
}

func serveConn(ctx context.Context, conn net.Conn, channel *inputs.Channel, logger *slog.Logger) {
	defer conn.Close()

	cl := inputs.NewClient(channel)
	defer cl.Disconnect()

	done := make(chan struct{})
	defer close(done)
	go drainPipe(conn, cl, done)

	for {
		if dl, ok := ctx.Deadline(); ok {
			conn.SetReadDeadline(dl)
		}
		msgType, payload, err := inputs.ReadMessage(conn, inputs.ReceiveBufSize)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.Debug("client read error", "client", cl.ID(), "error", err)
			}
			return
		}
		if err := channel.Handle(cl, msgType, payload); err != nil {
			logger.Warn("client message rejected", "client", cl.ID(), "error", err)
		}
	}
}

// drainPipe empties the client's pipe on a short interval until done is
// closed, discarding the items; nothing is written to conn. A real
// transport would encode each PipeItem variant to its own wire message;
// this reference driver only keeps the pipe from growing unbounded.
func drainPipe(conn net.Conn, cl *inputs.Client, done <-chan struct{}) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			cl.Drain()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  inputs.ReceiveBufSize,
	WriteBufferSize: inputs.ReceiveBufSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func runWebSocketListener(ctx context.Context, addr string, channel *inputs.Channel, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/inputs", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		serveWebSocket(ctx, conn, channel, logger)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("websocket listener ready", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func serveWebSocket(ctx context.Context, conn *websocket.Conn, channel *inputs.Channel, logger *slog.Logger) {
	defer conn.Close()

	cl := inputs.NewClient(channel)
	defer cl.Disconnect()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("websocket client disconnected", "client", cl.ID(), "error", err)
			return
		}
		if len(data) < 6 {
			continue
		}
		msgType, payload, err := inputs.ReadMessage(bytes.NewReader(data), inputs.ReceiveBufSize)
		if err != nil {
			logger.Warn("malformed websocket frame", "client", cl.ID(), "error", err)
			return
		}
		if err := channel.Handle(cl, msgType, payload); err != nil {
			logger.Warn("client message rejected", "client", cl.ID(), "error", err)
		}
		for _, item := range cl.Drain() {
			_ = item // encoding pipe items back onto the websocket is left to the real transport.
		}
	}
}
