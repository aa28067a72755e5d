package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineInput is one cart entry as a view submits it. Name and price are
// resolved from the menu at submission time.
type LineInput struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

type PlaceOrderInput struct {
	TableID   string      `json:"table_id"`
	Lines     []LineInput `json:"lines"`
	StaffName string      `json:"staff_name,omitempty"`
}

func (in PlaceOrderInput) Validate() error {
	if strings.TrimSpace(in.TableID) == "" {
		return Invalid("table_id", "is required")
	}
	if len(in.Lines) == 0 {
		return Invalid("lines", "at least one item is required")
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.MenuItemID) == "" {
			return Invalid("menu_item_id", "is required")
		}
		if l.Quantity < 1 {
			return Invalid("quantity", "must be at least 1")
		}
	}
	return nil
}

type NewMenuItemInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func (in NewMenuItemInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return Invalid("category", "is required")
	}
	if in.Price.IsNegative() {
		return Invalid("price", "must not be negative")
	}
	return nil
}

type NewInventoryItemInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit"`
}

func (in NewInventoryItemInput) Validate() error {
	if err := (InventoryDetails{Name: in.Name, Category: in.Category, Unit: in.Unit}).Validate(); err != nil {
		return err
	}
	if in.Stock.IsNegative() {
		return Invalid("stock", "must not be negative")
	}
	return nil
}

// InventoryDetails are the descriptive fields; stock is never part of it.
type InventoryDetails struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

func (in InventoryDetails) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return Invalid("unit", "is required")
	}
	return nil
}
