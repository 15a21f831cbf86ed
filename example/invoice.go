package main

import (
	"context"

	"github.com/kroksys/jrpc/v2/registry"
	"github.com/kroksys/jrpc/v2/spec"
)

// Argument of example.invoice_total.
type Invoice struct {
	Number   string        `json:"number"`
	Discount float64       `json:"discount"`
	Lines    []InvoiceLine `json:"lines"`
}

type InvoiceLine struct {
	Item     string  `json:"item"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (inv Invoice) Total() float64 {
	total := 0.0
	for _, line := range inv.Lines {
		total += float64(line.Quantity) * line.Price
	}
	return total * (1 - inv.Discount)
}

// Sums invoice lines. An invoice that does not decode, a fractional
// quantity for instance, is answered with Invalid params.
func (Example) InvoiceTotal(_ context.Context, p registry.Params) (interface{}, error) {
	var in struct {
		Invoice Invoice `json:"invoice"`
	}
	if err := p.Decode(&in); err != nil {
		return nil, spec.NewDispatchError(spec.InvalidParamsCode, spec.InvalidParamsMsg, err.Error())
	}
	if in.Invoice.Discount < 0 || in.Invoice.Discount > 1 {
		return nil, spec.NewDispatchError(spec.InvalidParamsCode, spec.InvalidParamsMsg, "discount must be between 0 and 1")
	}
	return map[string]interface{}{
		"number": in.Invoice.Number,
		"total":  in.Invoice.Total(),
	}, nil
}
