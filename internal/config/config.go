package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	Auth     AuthConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	GinMode        string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	AllowOrigins   []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type MongoDBConfig struct {
	URI         string
	Database    string
	MaxPoolSize uint64
	MinPoolSize uint64
	Timeout     time.Duration
}

// RedisConfig is optional. An empty Address disables the quiz cache and the chat relay.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	QuizTTL  time.Duration
}

// RabbitMQConfig is optional. An empty URI disables domain event publishing.
type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	Address string
}

type AuthConfig struct {
	JWTSecret string
}

type ChatConfig struct {
	DefaultRoom    string
	RequireAuth    bool
	SendBufferSize int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
	RelayChannel   string
}

// Load reads the optional .env file and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		glog.V(1).Info("No .env file found, using system env")
	}

	serviceName := getEnv("SERVICE_NAME", "gram-vidya")

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Host:           getEnv("HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "debug"),
			ServiceName:    serviceName,
			ServiceAddress: getEnv("SERVICE_ADDRESS", "gram-vidya"),
			ServiceID:      serviceName + "-" + getEnv("HOSTNAME", "1"),
			AllowOrigins:   getEnvAsList("CLIENT_URL", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		},
		MongoDB: MongoDBConfig{
			URI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:    getEnv("MONGO_DATABASE", "gram_vidya"),
			MaxPoolSize: getEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
			MinPoolSize: getEnvAsUint64("MONGO_MIN_POOL_SIZE", 5),
			Timeout:     getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			QuizTTL:  getEnvAsDuration("QUIZ_CACHE_TTL", 10*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "gramvidya.events"),
		},
		Consul: ConsulConfig{
			Address: getEnv("CONSUL_ADDRESS", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-jwt-secret-key"),
		},
		Chat: ChatConfig{
			DefaultRoom:    getEnv("CHAT_DEFAULT_ROOM", "general"),
			RequireAuth:    getEnvAsBool("CHAT_REQUIRE_AUTH", false),
			SendBufferSize: getEnvAsInt("CHAT_SEND_BUFFER", 64),
			MaxMessageSize: int64(getEnvAsInt("CHAT_MAX_MESSAGE_BYTES", 8192)),
			PongWait:       getEnvAsDuration("CHAT_PONG_WAIT", 60*time.Second),
			WriteWait:      getEnvAsDuration("CHAT_WRITE_WAIT", 10*time.Second),
			RelayChannel:   getEnv("CHAT_RELAY_PREFIX", "chat:"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		glog.Warningf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
		glog.Warningf("Invalid unsigned integer for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		glog.Warningf("Invalid boolean for %s: %q, using default %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		glog.Warningf("Invalid duration for %s: %q, using default %s", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
