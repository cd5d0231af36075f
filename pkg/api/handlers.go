package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"PriceRadar/pkg/monitor"
	"PriceRadar/pkg/service"
)

// Handlers API处理程序
type Handlers struct {
	prices  *service.PriceService
	alerts  *service.AlertService
	monitor *monitor.Monitor
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	prices *service.PriceService,
	alerts *service.AlertService,
	monitor *monitor.Monitor,
) *Handlers {
	return &Handlers{
		prices:  prices,
		alerts:  alerts,
		monitor: monitor,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"components": h.monitor.GetAllStatus(),
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if !h.monitor.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": h.monitor.GetAllStatus(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// GetCurrentPrice 获取单个股票当前价格
func (h *Handlers) GetCurrentPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	price, err := h.prices.CurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取当前价格失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": price,
	})
}

// GetCurrentPrices 批量获取当前价格
// symbols 参数为空时返回所有跟踪中的股票
func (h *Handlers) GetCurrentPrices(c *gin.Context) {
	var symbols []string
	if symbolsParam := c.Query("symbols"); symbolsParam != "" {
		symbols = strings.Split(symbolsParam, ",")
	} else {
		symbols = h.prices.Symbols()
	}

	prices, err := h.prices.CurrentPrices(c.Request.Context(), symbols)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取当前价格失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": prices,
	})
}

// GetPriceHistory 查询历史价格
func (h *Handlers) GetPriceHistory(c *gin.Context) {
	symbol := c.Param("symbol")

	// 默认查询最近24小时
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if fromParam := c.Query("from"); fromParam != "" {
		parsed, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "无效的from参数，需要RFC3339格式",
			})
			return
		}
		from = parsed
	}
	if toParam := c.Query("to"); toParam != "" {
		parsed, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "无效的to参数，需要RFC3339格式",
			})
			return
		}
		to = parsed
	}

	history, err := h.prices.History(c.Request.Context(), symbol, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询历史价格失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": history,
	})
}

// CreateAlertRequest 创建告警请求
type CreateAlertRequest struct {
	UserID    string          `json:"user_id" binding:"required"`
	Symbol    string          `json:"symbol" binding:"required"`
	Threshold decimal.Decimal `json:"threshold" binding:"required"`
	Direction string          `json:"direction" binding:"required"`
}

// CreateAlert 创建价格告警
func (h *Handlers) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	alert, err := h.alerts.CreateAlert(c.Request.Context(), req.UserID, req.Symbol, req.Threshold, req.Direction)
	if err != nil {
		// 校验失败统一返回400
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": alert,
	})
}

// GetUserAlerts 获取用户的告警列表
func (h *Handlers) GetUserAlerts(c *gin.Context) {
	userID := c.Param("userId")

	alerts, err := h.alerts.GetUserAlerts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "获取告警列表失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": alerts,
	})
}

// DeleteAlert 删除告警，只能删除属于自己的告警
func (h *Handlers) DeleteAlert(c *gin.Context) {
	alertID := c.Param("alertId")
	userID := c.Param("userId")

	err := h.alerts.DeleteAlert(c.Request.Context(), alertID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlertNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlertForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "删除告警失败: " + err.Error(),
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
