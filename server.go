package jrpc

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"
	"github.com/kroksys/jrpc/v2/codec"
	"github.com/kroksys/jrpc/v2/config"
	"github.com/kroksys/jrpc/v2/conn"
	"github.com/kroksys/jrpc/v2/dispatch"
	"github.com/kroksys/jrpc/v2/registry"
	"github.com/kroksys/pool"
	"go.uber.org/zap"
)

const (
	pingPeriod      = time.Second * 30
	shutdownTimeout = time.Second * 10

	// Optional request header used as trace id of the payload.
	RequestIDHeader = "X-Request-Id"
)

// Server serves json-rpc over HTTP POST and websockets.
type Server struct {
	*dispatch.Manager
	logger     *zap.Logger
	conns      *pool.PoolStr[*conn.Conn]
	pingPeriod time.Duration
}

// Creates new server dispatching to reg.
func NewServer(reg *registry.Registry, opts ...dispatch.Option) *Server {
	m := dispatch.NewManager(reg, opts...)
	return &Server{
		Manager:    m,
		logger:     m.Logger(),
		conns:      pool.NewPoolStr[*conn.Conn](),
		pingPeriod: pingPeriod,
	}
}

// Creates new server with codec and concurrency taken from cfg.
func NewServerFromConfig(reg *registry.Registry, cfg config.Server, logger *zap.Logger) (*Server, error) {
	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	return NewServer(reg,
		dispatch.WithLogger(logger),
		dispatch.WithCodec(c),
		dispatch.WithMaxConcurrency(cfg.MaxConcurrency),
	), nil
}

// Registers HTTP handler on path and websocket handler on wsPath. Empty
// wsPath leaves websockets disabled.
func (s *Server) Routes(r gin.IRoutes, path, wsPath string) {
	r.Any(path, s.HTTPHandler)
	if wsPath != "" {
		r.GET(wsPath, s.WebsocketHandlerGin)
	}
}

// HTTPHandler answers a single POST body. Notifications and batches made
// only of notifications get 204 No Content.
func (s *Server) HTTPHandler(g *gin.Context) {
	if g.Request.Method != http.MethodPost {
		g.Header("Allow", http.MethodPost)
		g.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}
	if ct := g.ContentType(); ct != "" && ct != s.Codec().ContentType() {
		g.AbortWithStatus(http.StatusUnsupportedMediaType)
		return
	}
	body, err := g.GetRawData()
	if err != nil {
		s.logger.Warn("read request body failed", zap.Error(err))
		g.AbortWithStatus(http.StatusBadRequest)
		return
	}
	ctx := g.Request.Context()
	if id := g.GetHeader(RequestIDHeader); id != "" {
		ctx = dispatch.WithTraceID(ctx, id)
		g.Header(RequestIDHeader, id)
	}
	out, err := s.HandlePayload(ctx, body)
	if err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
		g.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if out == nil {
		g.Status(http.StatusNoContent)
		return
	}
	g.Data(http.StatusOK, s.Codec().ContentType(), out)
}

func (s *Server) WebsocketHandlerGin(g *gin.Context) {
	s.WebsocketHandler(g.Writer, g.Request)
}

// Http server handler to upgrade net.Conn to jrpc Conn. Blocks until
// the connection is closed.
func (s *Server) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	nc, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := conn.NewConn(nc)
	s.conns.Put(c.ID, c)
	defer s.conns.Delete(c.ID)
	s.serveConn(context.WithoutCancel(r.Context()), c)
}

// Reads frames until the connection closes. Every frame is dispatched in
// its own goroutine so a slow method does not hold up the next one.
func (s *Server) serveConn(ctx context.Context, c *conn.Conn) {
	logger := s.logger.With(zap.String("conn", c.ID))
	logger.Debug("connection opened")
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer c.Close()
	defer wg.Wait()
	defer cancel()

	pinger := time.NewTicker(s.pingPeriod)
	defer pinger.Stop()
	for {
		select {
		case <-pinger.C:
			if err := c.Ping(); err != nil {
				logger.Debug("ping failed", zap.Error(err))
			}
		case frame, ok := <-c.In:
			if !ok {
				logger.Debug("connection closed")
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.handleFrame(ctx, logger, c, frame)
			}()
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, logger *zap.Logger, c *conn.Conn, frame conn.Frame) {
	out, err := s.HandlePayload(ctx, frame.Data)
	if err != nil {
		logger.Error("encode response failed", zap.Error(err))
		return
	}
	if out == nil {
		return
	}
	if frame.Op == ws.OpBinary {
		err = c.SendBinary(out)
	} else {
		err = c.Send(out)
	}
	if err != nil {
		logger.Debug("write response failed", zap.Error(err))
	}
}

// Number of open websocket connections.
func (s *Server) Connections() int {
	s.conns.Lock()
	defer s.conns.Unlock()
	return len(s.conns.Data())
}

// Shutdown closes every open websocket connection.
func (s *Server) Shutdown() {
	s.conns.Lock()
	open := make([]*conn.Conn, 0, len(s.conns.Data()))
	for _, c := range s.conns.Data() {
		open = append(open, c)
	}
	s.conns.Unlock()
	for _, c := range open {
		if err := c.Close(); err != nil {
			s.logger.Debug("close connection failed", zap.String("conn", c.ID), zap.Error(err))
		}
	}
	s.logger.Info("websocket connections closed", zap.Int("count", len(open)))
}

// ListenAndServe serves both routes on cfg.Address until ctx is done,
// then closes websockets and shuts the HTTP server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	s.Routes(r, cfg.Path, cfg.WebsocketPath)

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: r,
	}
	listenerErr := make(chan error, 1)
	go func() {
		s.logger.Info("JSON RPC 2.0 server started",
			zap.String("addr", cfg.Address),
			zap.String("path", cfg.Path),
			zap.String("websocket_path", cfg.WebsocketPath),
			zap.String("codec", s.Codec().Name()),
		)
		listenerErr <- server.ListenAndServe()
	}()

	select {
	case err := <-listenerErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	s.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-listenerErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(g *gin.Context) {
		start := time.Now()
		g.Next()
		s.logger.Debug("http request",
			zap.String("method", g.Request.Method),
			zap.String("path", g.Request.URL.Path),
			zap.Int("status", g.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
