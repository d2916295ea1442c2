package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"matchcore/domain/orderbook"
	"matchcore/infra/logx"
	"matchcore/service"
)

// Handler serves the read-only HTTP surface of an OrderService.
type Handler struct {
	svc *service.OrderService
	log *zap.Logger
}

func NewHandler(svc *service.OrderService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logx.OrNop(log).Named("http")}
}

// Routes returns the router with every endpoint mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/orders/{id}", h.GetOrder)
		r.Get("/volume", h.GetVolume)
		r.Get("/depth", h.GetDepth)
		r.Get("/stats", h.GetStats)
	})
	return r
}

type orderJSON struct {
	ID       uint32 `json:"id"`
	Side     string `json:"side"`
	Price    uint16 `json:"price"`
	Quantity uint16 `json:"quantity"`
}

type levelJSON struct {
	Price    uint16 `json:"price"`
	Quantity uint32 `json:"quantity"`
	Orders   int    `json:"orders"`
}

// Health reports 503 once the journal has failed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Healthy(); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.Lookup(uint32(id))
	if errors.Is(err, orderbook.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, orderJSON{
		ID:       o.ID,
		Side:     o.Side.String(),
		Price:    o.Price,
		Quantity: o.Quantity,
	})
}

func (h *Handler) GetVolume(w http.ResponseWriter, r *http.Request) {
	side, ok := parseSide(r.URL.Query().Get("side"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	price, err := strconv.ParseUint(r.URL.Query().Get("price"), 10, 16)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"side":   side.String(),
		"price":  price,
		"volume": h.svc.VolumeAtLevel(side, uint16(price)),
	})
}

func (h *Handler) GetDepth(w http.ResponseWriter, r *http.Request) {
	side, ok := parseSide(r.URL.Query().Get("side"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}

	n := 0
	if s := r.URL.Query().Get("levels"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid levels")
			return
		}
		n = v
	}

	levels := h.svc.Depth(side, n)
	out := make([]levelJSON, 0, len(levels))
	for _, l := range levels {
		out = append(out, levelJSON{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"side":   side.String(),
		"levels": out,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Stats()
	body := map[string]any{
		"seq":     st.Seq,
		"resting": st.Resting,
	}
	if st.HasBid {
		body["best_bid"] = st.BestBid
	}
	if st.HasAsk {
		body["best_ask"] = st.BestAsk
	}
	h.writeJSON(w, http.StatusOK, body)
}

func parseSide(s string) (orderbook.Side, bool) {
	switch strings.ToLower(s) {
	case "buy", "bid":
		return orderbook.Buy, true
	case "sell", "ask":
		return orderbook.Sell, true
	default:
		return 0, false
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, map[string]string{"error": msg})
}
