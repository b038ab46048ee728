package api

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"studysphere/services"
)

// MonitorController 监控控制器
type MonitorController struct {
	WSManager *services.WebSocketManager
}

// NewMonitorController 创建监控控制器
func NewMonitorController(wsManager *services.WebSocketManager) *MonitorController {
	return &MonitorController{
		WSManager: wsManager,
	}
}

// GetSystemStatus 获取系统状态
func (c *MonitorController) GetSystemStatus(ctx *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := gin.H{
		"connections": c.WSManager.GetConnectionCount(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc":       m.Alloc / 1024 / 1024,      // MB
			"total_alloc": m.TotalAlloc / 1024 / 1024, // MB
			"sys":         m.Sys / 1024 / 1024,        // MB
			"num_gc":      m.NumGC,
		},
	}
	if kafkaMetrics := c.WSManager.KafkaMetrics(); kafkaMetrics != nil {
		status["kafka"] = kafkaMetrics
	}

	ctx.JSON(http.StatusOK, status)
}
