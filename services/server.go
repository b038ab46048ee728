package services

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StartServer 在后台启动HTTP服务器。
// 写超时需要覆盖学习计划生成的耗时，这里在生成超时之上再留出余量。
func StartServer(r *gin.Engine, port string, planTimeout time.Duration) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      max(30*time.Second, planTimeout+15*time.Second),
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("监听失败: %s\n", err)
		}
	}()

	log.Println("服务器启动在端口:", port)
	return srv
}
