package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"studysphere/config"
	"studysphere/services"
)

// RegisterRoutes 注册API路由，认证与限流中间件由调用方挂载
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, wsManager *services.WebSocketManager, generator services.PlanGenerator) {
	// 创建服务，所有写操作都通过 wsManager 推送变更
	userService := services.NewUserService(db, rdb, wsManager)
	groupService := services.NewGroupService(db, userService, wsManager)
	messageService := services.NewMessageService(db, userService, wsManager)
	matchService := services.NewMatchService(userService, rdb)
	planService := services.NewPlanService(groupService, generator,
		time.Duration(config.AppConfig.PlanTimeoutSeconds)*time.Second)
	sessionService := services.NewSessionService(userService, rdb,
		time.Duration(config.AppConfig.SessionTTLHours)*time.Hour)

	// 创建控制器
	sessionController := NewSessionController(sessionService)
	userController := NewUserController(userService)
	matchController := NewMatchController(matchService)
	groupController := NewGroupController(groupService, planService)
	messageController := NewMessageController(messageService)
	wsController := NewWebSocketController(messageService, wsManager)
	monitorController := NewMonitorController(wsManager)

	api := r.Group("/api")
	{
		// 会话
		api.POST("/session", sessionController.OpenSession)
		api.DELETE("/session", sessionController.CloseSession)

		// 目录
		api.GET("/subjects", GetSubjects)
		api.GET("/availability", GetAvailability)

		// 用户档案
		api.GET("/users", userController.GetAllUsers)
		api.GET("/users/online", wsController.GetOnlineUsers)
		api.GET("/users/:id", userController.GetUserByID)
		api.PUT("/users/:id", userController.UpdateUser)
		api.POST("/users/:id/interests", userController.SelectInterest)
		api.POST("/users/:id/methods", userController.ToggleMethod)
		api.POST("/users/:id/availability", userController.ToggleAvailability)

		// 伙伴推荐
		api.GET("/matches", matchController.FindPartners)

		// 学习小组
		api.GET("/groups", groupController.GetGroups)
		api.GET("/groups/:id", groupController.GetGroupByID)
		api.PUT("/groups/:id", groupController.SaveGroup)
		api.PUT("/groups/:id/workspace", groupController.UpdateWorkspace)
		api.POST("/groups/:id/plan", groupController.GeneratePlan)

		// 私信
		api.GET("/messages", messageController.GetMessages)
		api.POST("/messages", messageController.SendMessage)
		api.GET("/conversations", messageController.GetConversations)
		api.GET("/conversations/:userId", messageController.GetConversation)

		// WebSocket
		api.GET("/ws", wsController.HandleWebSocket)

		// 监控
		api.GET("/monitor/system", monitorController.GetSystemStatus)
	}
}
