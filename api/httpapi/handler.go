// Package httpapi serves the admin HTTP endpoints: health, order
// lookup, book depth, book purge and Prometheus metrics.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ordercore/domain/command"
	"ordercore/domain/orderbook"
	"ordercore/service"
)

const defaultDepth = 10

// Queries is the part of service.OrderService the admin API uses.
type Queries interface {
	Order(id uint64) (service.View, error)
	Snapshot() []service.View
	Depth(security string, side orderbook.Side, n int) []orderbook.LevelDepth
	PurgeBook(cmd command.Purge) (int, error)
}

type Handler struct {
	svc      Queries
	gatherer prometheus.Gatherer
}

func NewHandler(svc Queries, gatherer prometheus.Gatherer) *Handler {
	return &Handler{svc: svc, gatherer: gatherer}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}
	r.GET("/book/:side", h.Depth)
	r.POST("/securities/:security/purge", h.Purge)
}

// NewRouter returns a gin engine with recovery and h's routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	v, err := h.svc.Order(id)
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTerminated):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, orderJSON(v))
	}
}

func (h *Handler) ListOrders(c *gin.Context) {
	views := h.svc.Snapshot()
	out := make([]gin.H, 0, len(views))
	for _, v := range views {
		out = append(out, orderJSON(v))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *Handler) Depth(c *gin.Context) {
	var side orderbook.Side
	switch strings.ToLower(c.Param("side")) {
	case "bid", "bids", "buy":
		side = orderbook.Buy
	case "ask", "asks", "sell":
		side = orderbook.Sell
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be bid or ask"})
		return
	}

	security := c.Query("security")
	if security == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "security is required"})
		return
	}
	n := defaultDepth
	if s := c.Query("depth"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid depth"})
			return
		}
		n = v
	}

	levels := h.svc.Depth(security, side, n)
	out := make([]gin.H, 0, len(levels))
	for _, l := range levels {
		out = append(out, gin.H{
			"price":  string(orderbook.AppendPrice(nil, l.Price)),
			"size":   l.Size,
			"orders": l.Orders,
		})
	}
	c.JSON(http.StatusOK, gin.H{"security": security, "side": side.String(), "levels": out})
}

// Purge cancels every resting order of one security.
func (h *Handler) Purge(c *gin.Context) {
	security := c.Param("security")
	n, err := h.svc.PurgeBook(command.Purge{Security: security})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"security": security, "canceled": n})
}

func orderJSON(v service.View) gin.H {
	return gin.H{
		"order_id":        v.ID,
		"client_id":       v.ClientID,
		"client_order_id": v.ClientOrderID,
		"security":        v.Security,
		"side":            v.Side.String(),
		"type":            v.Type.String(),
		"tif":             v.TimeInForce.String(),
		"price":           string(orderbook.AppendPrice(nil, v.Price)),
		"original_size":   v.OriginalSize,
		"total_size":      v.TotalSize,
		"executed_size":   v.ExecutedSize,
		"open_size":       v.OpenSize,
		"canceled_size":   v.CanceledSize,
		"resting":         v.Resting,
		"pending_cancel":  v.PendingCancel,
		"debug":           v.Debug,
	}
}
