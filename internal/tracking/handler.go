// Package tracking is the read-only HTTP board over the coordinator state:
// order status, a table's running order and the kitchen lanes.
package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"restaurant-system/internal/coordinator"
	"restaurant-system/internal/domain"
)

// Source is what the board reads from; *coordinator.Coordinator satisfies it.
type Source interface {
	Snapshot() coordinator.Snapshot
	Timeline(id string) ([]domain.StatusChange, error)
}

type Handler struct {
	src     Source
	started time.Time
}

func NewHandler(src Source) *Handler {
	return &Handler{src: src, started: time.Now()}
}

type lineView struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Note     string `json:"note,omitempty"`
}

type orderView struct {
	OrderID   string     `json:"order_id"`
	TableID   string     `json:"table_id"`
	Status    string     `json:"status"`
	Total     string     `json:"total"`
	Items     []lineView `json:"items"`
	StaffName string     `json:"staff_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toView(o domain.Order) orderView {
	items := make([]lineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, lineView{Name: l.Name, Quantity: l.Quantity, Price: l.Price.StringFixed(2), Note: l.Note})
	}
	return orderView{
		OrderID:   o.ID,
		TableID:   o.TableID,
		Status:    string(o.Status),
		Total:     o.Total.StringFixed(2),
		Items:     items,
		StaffName: o.StaffName,
		CreatedAt: o.CreatedAt,
	}
}

func toViews(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toView(o))
	}
	return out
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := param(r, "order_id")
	o, ok := h.src.Snapshot().Order(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "not_found", "order "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, toView(o))
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := param(r, "order_id")
	limit := atoiDefault(r.URL.Query().Get("limit"), 50)
	offset := atoiDefault(r.URL.Query().Get("offset"), 0)
	events, err := h.src.Timeline(id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": id, "events": page(events, limit, offset)})
}

func (h *Handler) GetTableOrder(w http.ResponseWriter, r *http.Request) {
	id := param(r, "table_id")
	s := h.src.Snapshot()
	t, ok := s.Table(id)
	if !ok {
		writeProblem(w, http.StatusNotFound, "not_found", "table "+id+" not found")
		return
	}
	resp := map[string]any{"table_id": t.ID, "table_status": string(t.Status), "order": nil}
	if o, ok := s.ActiveOrderFor(id); ok {
		resp["order"] = toView(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetKitchenBoard(w http.ResponseWriter, _ *http.Request) {
	s := h.src.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.Version,
		"pending": toViews(s.OrdersWithStatus(domain.StatusPending)),
		"cooking": toViews(s.OrdersWithStatus(domain.StatusCooking)),
		"ready":   toViews(s.OrdersWithStatus(domain.StatusReady)),
	})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

func page[T any](xs []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(xs) {
		return []T{}
	}
	xs = xs[offset:]
	if limit > 0 && limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// RFC 7807, trimmed
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func param(r *http.Request, key string) string { return r.PathValue(key) }

func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
