package registry

import (
	"context"
	"fmt"
	"runtime"
)

// Func is the handler of a registered method. Handlers that do slow work
// should watch ctx, it is cancelled when the caller goes away.
type Func func(ctx context.Context, p Params) (interface{}, error)

type Method struct {
	Signature Signature
	Func      Func
}

// Returns new Method with the given parameter schema.
func NewMethod(sig Signature, fn Func) *Method {
	return &Method{Signature: sig, Func: fn}
}

// PanicError is returned by Call when the handler panics.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("method handler crashed: %v", e.Value)
}

// Call runs the handler. Arguments are expected to be checked against the
// signature by the caller.
func (m *Method) Call(ctx context.Context, args []interface{}, kwargs map[string]interface{}) (res interface{}, errRes error) {
	// Catch panic
	defer func() {
		if err := recover(); err != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			res = nil
			errRes = &PanicError{Value: err, Stack: buf}
		}
	}()

	return m.Func(ctx, NewParams(m.Signature, args, kwargs))
}
