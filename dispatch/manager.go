package dispatch

import (
	"context"
	"errors"

	"github.com/kroksys/jrpc/v2/codec"
	"github.com/kroksys/jrpc/v2/registry"
	"github.com/kroksys/jrpc/v2/spec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Manager resolves requests against a registry and builds responses.
// It keeps no state between calls, so one Manager serves any number of
// concurrent dispatches.
type Manager struct {
	registry       *registry.Registry
	codec          codec.Codec
	logger         *zap.Logger
	maxConcurrency int
}

type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Codec used by HandlePayload. Defaults to JSON.
func WithCodec(c codec.Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// Limits number of batch members running at the same time. 0 means no limit.
func WithMaxConcurrency(n int) Option {
	return func(m *Manager) {
		m.maxConcurrency = n
	}
}

func NewManager(reg *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		codec:    codec.JSON{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

func (m *Manager) Codec() codec.Codec {
	return m.codec
}

func (m *Manager) Logger() *zap.Logger {
	return m.logger
}

// GetResponse invokes the method named by req and returns its response.
// Notifications are invoked as well but always return nil. Handler
// failures never escape, they become error responses.
func (m *Manager) GetResponse(ctx context.Context, req *spec.Request) *spec.Response {
	resp := m.resolve(ctx, req)
	if req.IsNotification() {
		return nil
	}
	return resp
}

// GetBatchResponse runs every member concurrently and waits for all of
// them. Responses keep the order of their requests, notifications are
// dropped. Returns nil when nothing is left to send.
func (m *Manager) GetBatchResponse(ctx context.Context, batch spec.BatchRequest) spec.BatchResponse {
	results := m.fanOut(len(batch), func(i int) *spec.Response {
		return m.GetResponse(ctx, batch[i])
	})
	return compact(results)
}

func (m *Manager) resolve(ctx context.Context, req *spec.Request) *spec.Response {
	id, _ := req.ID()
	logger := m.logger.With(
		zap.String("trace", TraceID(ctx)),
		zap.String("method", req.Method()),
		zap.Any("id", id),
		zap.Bool("notification", req.IsNotification()),
	)
	if !req.IsNotification() && id == nil {
		logger.Debug("request with null id")
	}

	method, ok := m.registry.FindMethod(req.Method())
	if !ok {
		logger.Debug("method not found")
		return spec.ErrorResponseFor(req, spec.NewError(spec.MethodNotFoundCode))
	}

	args, kwargs := req.Args(), req.Kwargs()
	if err := method.Signature.Check(args, kwargs); err != nil {
		logger.Debug("arguments do not match method signature", zap.Error(err))
		return spec.ErrorResponseFor(req, spec.NewError(spec.InvalidParamsCode))
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("dispatch cancelled before invocation", zap.Error(err))
		return spec.ErrorResponseFor(req, spec.NewError(spec.ServerErrorCode))
	}

	result, err := method.Call(ctx, args, kwargs)
	if err != nil {
		return spec.ErrorResponseFor(req, classify(logger, err))
	}
	return spec.ResponseFor(req, result)
}

// Maps handler failure to the error sent back to the client. Arguments
// already matched the signature, so only a DispatchError picks the code.
// Errors the handler merely wraps, invalid params included, are server
// errors.
func classify(logger *zap.Logger, err error) *spec.Error {
	var dispatchErr *spec.DispatchError
	if errors.As(err, &dispatchErr) && dispatchErr.Err != nil {
		logger.Debug("method returned dispatch error", zap.Error(err))
		return dispatchErr.Err
	}
	var panicErr *registry.PanicError
	if errors.As(err, &panicErr) {
		logger.Error("method handler crashed", zap.Any("panic", panicErr.Value), zap.ByteString("stack", panicErr.Stack))
	} else {
		logger.Warn("method failed", zap.Error(err))
	}
	return spec.NewError(spec.ServerErrorCode)
}

// Runs fn for 0..n-1 concurrently and collects results by slot. Members
// never return an error so one failure can not stop the others.
func (m *Manager) fanOut(n int, fn func(i int) *spec.Response) []*spec.Response {
	results := make([]*spec.Response, n)
	g := new(errgroup.Group)
	if m.maxConcurrency > 0 {
		g.SetLimit(m.maxConcurrency)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func compact(results []*spec.Response) spec.BatchResponse {
	batch := make(spec.BatchResponse, 0, len(results))
	for _, r := range results {
		if r != nil {
			batch = append(batch, r)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return batch
}
