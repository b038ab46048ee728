package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 应用配置
var AppConfig struct {
	// 服务器配置
	Port               string
	Mode               string // debug 或 release
	JWTSecret          string
	SessionTTLHours    int // 匿名会话有效期（小时）
	MaxConnections     int // 最大WebSocket连接数
	RateLimitPerMinute int

	// Redis配置（缓存、会话吊销、限流）
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	// Kafka配置（变更通知）
	KafkaBootstrapServers  []string
	KafkaConsumerGroup     string
	KafkaTopicPrefix       string
	KafkaPartitions        int
	KafkaReplicationFactor int

	// 数据库配置
	DBDriver           string // mysql 或 sqlite
	DBConnectionString string
	DBMaxIdleConns     int
	DBMaxOpenConns     int

	// 缓存配置
	CacheExpiration int // 缓存过期时间（秒）

	// 消息队列配置
	ChannelBuffSize int

	// 学习计划生成
	GeminiAPIKey       string
	GeminiModel        string
	PlanTimeoutSeconds int

	// 白板快照最大尺寸
	WhiteboardMaxWidth  int
	WhiteboardMaxHeight int

	// 数据库为空时写入演示数据
	SeedDemoData bool
}

// LoadConfig 从环境变量加载配置
func LoadConfig() {
	// 尝试加载.env文件
	err := godotenv.Load()
	if err != nil {
		log.Println("未找到.env文件，将使用环境变量")
	}

	// 服务器配置
	AppConfig.Port = getEnv("PORT", "8080")
	AppConfig.Mode = getEnv("MODE", "debug")
	AppConfig.JWTSecret = getEnv("JWT_SECRET", "your-secret-key")
	AppConfig.SessionTTLHours = getEnvInt("SESSION_TTL_HOURS", 24)
	AppConfig.MaxConnections = getEnvInt("MAX_CONNECTIONS", 10000)
	AppConfig.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)

	// Redis配置
	AppConfig.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	AppConfig.RedisPassword = getEnv("REDIS_PASSWORD", "")
	AppConfig.RedisDB = getEnvInt("REDIS_DB", 0)
	AppConfig.RedisPoolSize = getEnvInt("REDIS_POOL_SIZE", runtime.NumCPU()*10)

	// Kafka配置，留空表示不使用Kafka
	kafkaServers := getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")
	AppConfig.KafkaBootstrapServers = nil
	for _, s := range strings.Split(kafkaServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			AppConfig.KafkaBootstrapServers = append(AppConfig.KafkaBootstrapServers, s)
		}
	}
	AppConfig.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", "studysphere-group")
	AppConfig.KafkaTopicPrefix = getEnv("KAFKA_TOPIC_PREFIX", "studysphere-")
	AppConfig.KafkaPartitions = getEnvInt("KAFKA_PARTITIONS", 3)
	AppConfig.KafkaReplicationFactor = getEnvInt("KAFKA_REPLICATION_FACTOR", 1)

	// 数据库配置
	AppConfig.DBDriver = getEnv("DB_DRIVER", "mysql")
	AppConfig.DBConnectionString = getEnv("DB_CONNECTION_STRING", "root:password@tcp(127.0.0.1:3306)/studysphere?charset=utf8mb4&parseTime=True&loc=UTC")
	AppConfig.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	AppConfig.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 100)

	// 缓存配置
	AppConfig.CacheExpiration = getEnvInt("CACHE_EXPIRATION", 300)

	// 消息队列配置
	AppConfig.ChannelBuffSize = getEnvInt("CHANNEL_BUFFER_SIZE", 1000)

	// 学习计划生成
	AppConfig.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	AppConfig.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	AppConfig.PlanTimeoutSeconds = getEnvInt("PLAN_TIMEOUT_SECONDS", 60)

	AppConfig.WhiteboardMaxWidth = getEnvInt("WHITEBOARD_MAX_WIDTH", 1920)
	AppConfig.WhiteboardMaxHeight = getEnvInt("WHITEBOARD_MAX_HEIGHT", 1080)

	AppConfig.SeedDemoData = getEnvBool("SEED_DEMO_DATA", true)

	log.Println("配置加载完成")
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt 获取整数环境变量，解析失败时返回默认值
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
