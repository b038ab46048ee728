package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"

	"studysphere/config"
)

// 上下文键
const (
	ContextUserID    = "userID"
	ContextSessionID = "sessionID"
)

// RevokedKeyPrefix 已注销会话的Redis键前缀，后接 jti
const RevokedKeyPrefix = "studysphere:session:revoked:"

// JWTClaims 自定义JWT声明，ID 字段保存会话ID
type JWTClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken 为匿名会话签发JWT令牌
func GenerateToken(userID int, sessionID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "studysphere",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken 解析JWT令牌
func ParseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的令牌")
}

// JWTAuth JWT认证中间件，同时拒绝已注销的会话
func JWTAuth(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAuth(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌: " + err.Error()})
			return
		}

		revoked, err := rdb.Exists(c.Request.Context(), RevokedKeyPrefix+claims.ID).Result()
		if err != nil {
			log.Printf("检查会话状态失败: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "暂时无法验证会话"})
			return
		}
		if revoked > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "会话已结束"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSessionID, claims.ID)
		c.Next()
	}
}

// extractToken 从 Authorization 头读取令牌，WebSocket 握手时也接受 token 查询参数
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" && c.Request.URL.Path == "/api/ws" {
			return token, nil
		}
		return "", errors.New("未提供认证令牌")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", errors.New("认证格式错误")
	}
	return parts[1], nil
}

// skipAuth 判断是否跳过认证
func skipAuth(method, path string) bool {
	if method == http.MethodPost && path == "/api/session" {
		return true
	}

	noAuthPaths := []string{
		"/api/subjects",
		"/api/availability",
		"/api/monitor",
		"/metrics",
	}
	for _, p := range noAuthPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
