package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		stock string
		want  StockStatus
	}{
		{"0", StockCritical},
		{"1.99", StockCritical},
		{"2", StockLow},
		{"4.999", StockLow},
		{"5", StockHealthy},
		{"25", StockHealthy},
	}
	for _, tt := range tests {
		if got := ClassifyStock(decimal.RequireFromString(tt.stock)); got != tt.want {
			t.Errorf("ClassifyStock(%s) = %s, want %s", tt.stock, got, tt.want)
		}
	}
}

func TestOrderStatusNext(t *testing.T) {
	seq := []OrderStatus{StatusPending, StatusCooking, StatusReady, StatusServed}
	for i := 0; i < len(seq)-1; i++ {
		next, ok := seq[i].Next()
		if !ok || next != seq[i+1] {
			t.Errorf("%s.Next() = %s, %v, want %s, true", seq[i], next, ok, seq[i+1])
		}
	}
	for _, s := range []OrderStatus{StatusServed, StatusPaid, StatusCancelled} {
		if next, ok := s.Next(); ok || next != s {
			t.Errorf("%s.Next() = %s, %v, want %s, false", s, next, ok, s)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range OrderStatuses {
		want := s == StatusPaid || s == StatusCancelled
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

func TestSumLines(t *testing.T) {
	lines := []OrderLine{
		{Name: "Truffle Burger", Price: decimal.NewFromInt(18), Quantity: 1},
		{Name: "Caesar Salad", Price: decimal.NewFromInt(12), Quantity: 2},
	}
	if got := SumLines(lines); !got.Equal(decimal.NewFromInt(42)) {
		t.Errorf("SumLines() = %s, want 42", got)
	}
	if got := SumLines(nil); !got.IsZero() {
		t.Errorf("SumLines(nil) = %s, want 0", got)
	}
}

func TestCloneDoesNotShareLines(t *testing.T) {
	o := Order{ID: "1", Lines: []OrderLine{{ID: "a", Quantity: 1}}, CreatedAt: time.Now()}
	c := o.Clone()
	c.Lines[0].Quantity = 9
	if o.Lines[0].Quantity != 1 {
		t.Fatalf("Clone shares line storage with the original")
	}
}

func TestBillFor(t *testing.T) {
	o := Order{ID: "1025", Total: decimal.NewFromInt(18)}
	b := BillFor(o, decimal.RequireFromString("0.10"))
	if !b.Tax.Equal(decimal.RequireFromString("1.8")) {
		t.Errorf("Tax = %s, want 1.8", b.Tax)
	}
	if !b.Subtotal.Equal(decimal.RequireFromString("16.2")) {
		t.Errorf("Subtotal = %s, want 16.2", b.Subtotal)
	}
	if !b.Subtotal.Add(b.Tax).Equal(b.Total) {
		t.Errorf("Subtotal + Tax = %s, want %s", b.Subtotal.Add(b.Tax), b.Total)
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	if err := Invalid("lines", "empty"); !errors.Is(err, ErrValidation) {
		t.Errorf("Invalid() does not match ErrValidation: %v", err)
	}
	err := NotFound("order", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFound() does not match ErrNotFound: %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "order" || nf.ID != "x" {
		t.Errorf("errors.As(NotFound()) = %+v", nf)
	}
}

func TestPlaceOrderInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   PlaceOrderInput
		ok   bool
	}{
		{"valid", PlaceOrderInput{TableID: "7", Lines: []LineInput{{MenuItemID: "1", Quantity: 1}}}, true},
		{"no table", PlaceOrderInput{Lines: []LineInput{{MenuItemID: "1", Quantity: 1}}}, false},
		{"empty cart", PlaceOrderInput{TableID: "7"}, false},
		{"zero quantity", PlaceOrderInput{TableID: "7", Lines: []LineInput{{MenuItemID: "1"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}
