package dispatch

import (
	"context"

	"github.com/kroksys/jrpc/v2/spec"
	"go.uber.org/zap"
)

// HandlePayload decodes raw transport bytes, dispatches the request or
// batch they hold and encodes the reply with the manager codec.
//
// A nil slice with nil error means nothing must be written back. Payloads
// that can not be decoded or are not valid requests are answered with
// Parse error or Invalid Request and a null id.
func (m *Manager) HandlePayload(ctx context.Context, data []byte) ([]byte, error) {
	if TraceID(ctx) == "" {
		ctx = WithTraceID(ctx, newTraceID())
	}
	logger := m.logger.With(zap.String("trace", TraceID(ctx)))

	v, err := m.codec.Decode(data)
	if err != nil {
		logger.Debug("payload decode failed", zap.Error(err), zap.Int("size", len(data)))
		return m.encode(logger, spec.NewResponseError(nil, spec.NewError(spec.ParseErrorCode)))
	}

	switch spec.GetJsonType(v) {
	case spec.TypeJsonObject:
		req, err := spec.RequestFromValue(v)
		if err != nil {
			logger.Debug("invalid request", zap.Error(err))
			return m.encode(logger, invalidRequest())
		}
		resp := m.GetResponse(ctx, req)
		if resp == nil {
			return nil, nil
		}
		return m.encode(logger, resp)

	case spec.TypeJsonArray:
		items := v.([]interface{})
		if len(items) == 0 {
			logger.Debug("empty batch")
			return m.encode(logger, invalidRequest())
		}
		batch := m.handleBatch(ctx, logger, items)
		if batch == nil {
			return nil, nil
		}
		return m.encodeBatch(logger, batch)
	}

	logger.Debug("payload is neither an object nor an array")
	return m.encode(logger, invalidRequest())
}

// Members that are not valid requests get an Invalid Request response in
// their position, the rest are dispatched concurrently.
func (m *Manager) handleBatch(ctx context.Context, logger *zap.Logger, items []interface{}) spec.BatchResponse {
	requests := make([]*spec.Request, len(items))
	for i, item := range items {
		req, err := spec.RequestFromValue(item)
		if err != nil {
			logger.Debug("invalid batch member", zap.Int("index", i), zap.Error(err))
			continue
		}
		requests[i] = req
	}
	results := m.fanOut(len(items), func(i int) *spec.Response {
		if requests[i] == nil {
			return invalidRequest()
		}
		return m.GetResponse(ctx, requests[i])
	})
	return compact(results)
}

func invalidRequest() *spec.Response {
	return spec.NewResponseError(nil, spec.NewError(spec.InvalidRequestCode))
}

// Encodes a single response. A result the codec can not encode is
// replaced with Internal error for the same id.
func (m *Manager) encode(logger *zap.Logger, resp *spec.Response) ([]byte, error) {
	data, err := m.codec.Encode(resp.Value())
	if err == nil {
		return data, nil
	}
	logger.Error("response encode failed", zap.Any("id", resp.ID()), zap.Error(err))
	return m.codec.Encode(spec.NewResponseError(resp.ID(), spec.NewError(spec.InternalErrorCode)).Value())
}

func (m *Manager) encodeBatch(logger *zap.Logger, batch spec.BatchResponse) ([]byte, error) {
	data, err := m.codec.Encode(batch.Value())
	if err == nil {
		return data, nil
	}
	logger.Error("batch encode failed, checking members", zap.Error(err))
	safe := make(spec.BatchResponse, 0, len(batch))
	for _, resp := range batch {
		if _, err := m.codec.Encode(resp.Value()); err != nil {
			resp = spec.NewResponseError(resp.ID(), spec.NewError(spec.InternalErrorCode))
		}
		safe = append(safe, resp)
	}
	return m.codec.Encode(safe.Value())
}
