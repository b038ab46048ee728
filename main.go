package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studysphere/api"
	"studysphere/config"
	"studysphere/middleware"
	"studysphere/services"
)

func main() {
	// 设置最大处理器数量
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 加载配置
	config.LoadConfig()

	// 连接数据库并迁移表结构
	db, err := services.OpenDatabase(
		config.AppConfig.DBDriver,
		config.AppConfig.DBConnectionString,
		config.AppConfig.DBMaxIdleConns,
		config.AppConfig.DBMaxOpenConns,
	)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	// 初始化Redis客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
		PoolSize: config.AppConfig.RedisPoolSize,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Redis连接失败: %v", err)
	}
	log.Println("Redis连接成功")

	if config.AppConfig.SeedDemoData {
		if err := services.SeedDemoData(ctx, db); err != nil {
			log.Fatalf("写入演示数据失败: %v", err)
		}
	}

	// 初始化Kafka服务（允许失败）
	kafkaService, err := services.NewKafkaService()
	if err != nil {
		log.Printf("警告: Kafka服务初始化失败: %v", err)
		log.Println("应用将在没有Kafka的情况下运行（变更只推送给本实例的连接）")
		kafkaService = nil
	}

	// 初始化WebSocket管理器
	wsManager := services.NewWebSocketManager(rdb, kafkaService)
	go wsManager.Run()

	// 初始化学习计划生成器（允许失败，生成请求会返回502）
	var generator services.PlanGenerator
	gemini, err := services.NewGeminiPlanGenerator(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		log.Printf("警告: 学习计划生成服务不可用: %v", err)
	} else {
		generator = gemini
	}

	// 创建Gin实例
	if config.AppConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 配置CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	}))

	// 限流与认证
	r.Use(middleware.RateLimiter(rdb, config.AppConfig.RateLimitPerMinute))
	r.Use(middleware.JWTAuth(rdb))

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 注册路由
	api.RegisterRoutes(r, db, rdb, wsManager, generator)

	srv := services.StartServer(r, config.AppConfig.Port,
		time.Duration(config.AppConfig.PlanTimeoutSeconds)*time.Second)

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	// 停止WebSocket管理器（会关闭Kafka连接）
	wsManager.Stop()

	if err := rdb.Close(); err != nil {
		log.Printf("关闭Redis连接失败: %v", err)
	}

	log.Println("服务器已优雅关闭")
}
