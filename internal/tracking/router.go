package tracking

import (
	"context"
	"net/http"

	"restaurant-system/internal/common/httpx"
	"restaurant-system/internal/common/logger"
)

func Router(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/tracking/orders/{order_id}/status", h.GetStatus)
	mux.HandleFunc("GET /api/v1/tracking/orders/{order_id}/timeline", h.GetTimeline)
	mux.HandleFunc("GET /api/v1/tracking/tables/{table_id}/order", h.GetTableOrder)
	mux.HandleFunc("GET /api/v1/tracking/kitchen/board", h.GetKitchenBoard)
	mux.HandleFunc("GET /health", h.Health)
	return mux
}

// Run serves the board on port until ctx is done.
func Run(ctx context.Context, src Source, port int, lg *logger.Logger) error {
	return httpx.New(port, Router(NewHandler(src)), lg).Run(ctx)
}
