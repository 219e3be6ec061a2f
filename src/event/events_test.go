package event

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"orderexecution/src/model"
)

func TestDecodeOrderPlaced(t *testing.T) {
	payload := []byte(`{"orderId":1,"userId":7,"ticker":"ABC","quantity":10,"price":"25.50","side":"BUY"}`)

	placed, err := DecodeOrderPlaced(payload)
	if err != nil {
		t.Fatalf("unexpected error decoding valid payload: %v", err)
	}
	if placed.OrderID != 1 || placed.UserID != 7 || placed.Ticker != "ABC" {
		t.Fatalf("unexpected event decoded: %+v", placed)
	}
	if !placed.Price.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected price: %s", placed.Price)
	}
}

func TestDecodeOrderPlacedRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{"orderId":`},
		{"missing order id", `{"userId":7,"ticker":"ABC","quantity":10,"price":"25.50","side":"BUY"}`},
		{"negative order id", `{"orderId":-1,"userId":7,"ticker":"ABC","quantity":10,"price":"25.50","side":"BUY"}`},
		{"missing user id", `{"orderId":1,"ticker":"ABC","quantity":10,"price":"25.50","side":"BUY"}`},
		{"empty ticker", `{"orderId":1,"userId":7,"ticker":"","quantity":10,"price":"25.50","side":"BUY"}`},
		{"zero quantity", `{"orderId":1,"userId":7,"ticker":"ABC","quantity":0,"price":"25.50","side":"BUY"}`},
		{"negative price", `{"orderId":1,"userId":7,"ticker":"ABC","quantity":10,"price":"-1","side":"BUY"}`},
		{"unknown side", `{"orderId":1,"userId":7,"ticker":"ABC","quantity":10,"price":"25.50","side":"HOLD"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOrderPlaced([]byte(tt.payload))
			if !errors.Is(err, model.ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}
