package main

import (
	"context"
	"errors"
	"time"

	"github.com/kroksys/jrpc/v2/registry"
	"github.com/kroksys/jrpc/v2/spec"
)

// Example methods are registered under "example.".
type Example struct{}

func (Example) Namespace() string {
	return "example"
}

func (e Example) Methods() map[string]*registry.Method {
	return map[string]*registry.Method{
		"simple":            registry.NewMethod(registry.Positional("x", "y"), e.Simple),
		"simple_no_params":  registry.NewMethod(registry.Signature{}, e.SimpleNoParams),
		"simple_error":      registry.NewMethod(registry.Signature{}, e.SimpleError),
		"simple_with_delay": registry.NewMethod(registry.Positional("x", "y", "ms"), e.SimpleWithDelay),
		"invoice_total":     registry.NewMethod(registry.Positional("invoice"), e.InvoiceTotal),
		"_internal":         registry.NewMethod(registry.Signature{}, e.SimpleNoParams),
	}
}

type pair struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (Example) Simple(_ context.Context, p registry.Params) (interface{}, error) {
	var in pair
	if err := p.Decode(&in); err != nil {
		return nil, err
	}
	return in.X + in.Y, nil
}

func (Example) SimpleNoParams(context.Context, registry.Params) (interface{}, error) {
	return 5, nil
}

func (Example) SimpleError(context.Context, registry.Params) (interface{}, error) {
	return nil, spec.NewDispatchError(4000, "simple error")
}

// Adds x and y after ms milliseconds unless the call is cancelled.
func (Example) SimpleWithDelay(ctx context.Context, p registry.Params) (interface{}, error) {
	var in struct {
		X  int `json:"x"`
		Y  int `json:"y"`
		Ms int `json:"ms"`
	}
	if err := p.Decode(&in); err != nil {
		return nil, err
	}
	if in.Ms < 0 {
		return nil, errors.New("negative delay")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(in.Ms) * time.Millisecond):
	}
	return in.X + in.Y, nil
}
