package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kroksys/jrpc/v2"
	"github.com/kroksys/jrpc/v2/config"
	"github.com/kroksys/jrpc/v2/logging"
	"github.com/kroksys/jrpc/v2/registry"
	"go.uber.org/zap"
)

func basicMethods() map[string]*registry.Method {
	return map[string]*registry.Method{
		"echo": registry.NewMethod(registry.Signature{Optional: []string{"s"}}, func(_ context.Context, p registry.Params) (interface{}, error) {
			if s, ok := p.Get("s"); ok {
				return s, nil
			}
			return "pong", nil
		}),
		"mul2": registry.NewMethod(registry.Positional("x"), func(_ context.Context, p registry.Params) (interface{}, error) {
			var in struct {
				X float64 `json:"x"`
			}
			if err := p.Decode(&in); err != nil {
				return nil, err
			}
			return in.X * 2, nil
		}),
		"say_after": registry.NewMethod(registry.Positional("delay", "msg"), func(ctx context.Context, p registry.Params) (interface{}, error) {
			var in struct {
				Delay float64 `json:"delay"`
				Msg   string  `json:"msg"`
			}
			if err := p.Decode(&in); err != nil {
				return nil, err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(in.Delay * float64(time.Second))):
			}
			return in.Msg, nil
		}),
		"get_data": registry.NewMethod(registry.Signature{}, func(context.Context, registry.Params) (interface{}, error) {
			return []interface{}{"hello", 5}, nil
		}),
	}
}

func newRegistry() (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := reg.RegisterBulk(basicMethods()); err != nil {
		return nil, err
	}
	if err := reg.RegisterBulk(Example{}); err != nil {
		return nil, err
	}
	return reg, nil
}

func main() {
	configPath := flag.String("config", "", "Path to YAML or TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, level, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		err := config.Watch(ctx, *configPath, func(c *config.Config, err error) {
			if err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				return
			}
			if err := logging.SetLevel(level, c.Log.Level); err != nil {
				logger.Warn("invalid log level", zap.Error(err))
				return
			}
			logger.Info("config reloaded", zap.String("log_level", c.Log.Level))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	reg, err := newRegistry()
	if err != nil {
		logger.Fatal("register methods", zap.Error(err))
	}
	logger.Debug("methods registered", zap.Strings("methods", reg.Names()))

	gin.SetMode(gin.ReleaseMode)
	server, err := jrpc.NewServerFromConfig(reg, cfg.Server, logger)
	if err != nil {
		logger.Fatal("create server", zap.Error(err))
	}
	if err := server.ListenAndServe(ctx, cfg.Server); err != nil {
		logger.Error("jrpc server stopped", zap.Error(err))
	}
}
