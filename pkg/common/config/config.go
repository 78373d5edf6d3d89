package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize"` // 单位：字节
	AllowedMethods []string `json:"allowedMethods"`
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type MiddlewareConfig struct {
	Security SecurityConfig `json:"security"`
	CORS     CORSConfig     `json:"cors"`
}

// SessionConfig 会话 Cookie 与令牌签名配置
type SessionConfig struct {
	CookieName       string `json:"cookieName"`
	LoggedCookieName string `json:"loggedCookieName"`
	SigningMethod    string `json:"signingMethod"`
	SecureCookies    bool   `json:"secureCookies"`
}

// ValidationConfig 输入校验使用的正则表达式，修改无需改代码
type ValidationConfig struct {
	UserIDPattern   string `json:"userIdPattern"`
	UsernamePattern string `json:"usernamePattern"`
	EmailPattern    string `json:"emailPattern"`
	HashPattern     string `json:"hashPattern"`
}

// PasswordConfig bcrypt 参数
type PasswordConfig struct {
	Cost            int `json:"cost"`
	HashConcurrency int `json:"hashConcurrency"` // 同时进行的哈希计算数量
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LogConfig struct {
	Level string `json:"level"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`      // mysql | memory
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
	AutoMigrate bool   `json:"autoMigrate"` // 启动时自动建表
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Session    SessionConfig    `json:"session"`
	Validation ValidationConfig `json:"validation"`
	Password   PasswordConfig   `json:"password"`
	Metrics    MetricsConfig    `json:"metrics"`
	Log        LogConfig        `json:"log"`
	Env        string           `json:"env"` // 环境标识
}

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Database: DatabaseConfig{
			Driver:      DriverMySQL,
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			Password:    "root",
			DBName:      "app",
			UseUnixSock: false,
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:    1 << 20, // 1MB
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{"http://localhost:3000"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "X-Requested-With", "X-Request-ID"},
				ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
		},
		Session: SessionConfig{
			CookieName:       "session_token",
			LoggedCookieName: "logged",
			SigningMethod:    "HS256",
		},
		Validation: ValidationConfig{
			UserIDPattern:   `^[0-9]{1,15}$`,
			UsernamePattern: `^[a-zA-Z0-9_.\-]+$`,
			EmailPattern:    `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`,
			HashPattern:     `^\$2[aby]?\$[0-9]{2}\$[./A-Za-z0-9]{53}$`,
		},
		Password: PasswordConfig{
			Cost:            10,
			HashConcurrency: runtime.GOMAXPROCS(0),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
		Env: "development",
	}
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：命令行参数 > 环境变量 > 配置文件 > 默认值）
// path 为空时按 APP_CONFIG 和默认搜索路径查找；flags 可以为 nil。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	config := Default()

	// 1. 尝试从配置文件加载
	if path == "" {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 2. 从环境变量覆盖，.env 中的值不覆盖已存在的环境变量
	_ = godotenv.Load()
	loadFromEnv(config)

	// 3. 命令行参数覆盖（只取显式设置过的）
	if flags != nil {
		if err := loadFromFlags(config, flags); err != nil {
			return nil, fmt.Errorf("failed to apply flags: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Password.HashConcurrency < 1 {
		return fmt.Errorf("password.hashConcurrency must be positive, got %d", c.Password.HashConcurrency)
	}
	if c.Session.CookieName == "" || c.Session.LoggedCookieName == "" {
		return fmt.Errorf("session cookie names must not be empty")
	}
	return nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",                // 当前目录
		"./config.yaml",                // 当前目录
		"../config.json",               // 上级目录
		"/etc/user-portal/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var unmarshalConf = koanf.UnmarshalConf{Tag: "json"}

// loadFromFile 从文件加载配置，JSON 是 YAML 的子集，两种格式共用一个解析器
func loadFromFile(config *Config, path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return err
	}
	return k.UnmarshalWithConf("", config, unmarshalConf)
}

// flagKeys 命令行参数名 -> 配置键
var flagKeys = map[string]string{
	"addr":      "server.address",
	"env":       "env",
	"db-driver": "database.driver",
	"log-level": "log.level",
}

func loadFromFlags(config *Config, flags *pflag.FlagSet) error {
	k := koanf.New(".")
	provider := posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return err
	}
	return k.UnmarshalWithConf("", config, unmarshalConf)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器配置
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	// 环境配置
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	/****** 会话配置 ******/
	if v := os.Getenv("SESSION_SECURE_COOKIES"); v != "" {
		config.Session.SecureCookies = parseBool(v)
	}

	if v := os.Getenv("SESSION_ALGORITHM"); v != "" {
		// 清理输入算法字符串中的空格
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		// 允许的算法列表
		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Session.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported session signing algorithm: %s", v)
		}
	}

	/****** 校验规则 ******/
	if v := os.Getenv("USER_ID_REGEXP"); v != "" {
		config.Validation.UserIDPattern = v
	}
	if v := os.Getenv("USER_USERNAME_REGEXP"); v != "" {
		config.Validation.UsernamePattern = v
	}
	if v := os.Getenv("USER_EMAIL_REGEXP"); v != "" {
		config.Validation.EmailPattern = v
	}
	if v := os.Getenv("USER_HASH_REGEXP"); v != "" {
		config.Validation.HashPattern = v
	}

	if v := os.Getenv("PASSWORD_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.Password.Cost = cost
		}
	}

	if v := os.Getenv("PASSWORD_HASH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Password.HashConcurrency = n
		}
	}

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		config.Metrics.Enabled = parseBool(v)
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASS"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		config.Database.AutoMigrate = parseBool(v)
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 将配置中的日志级别转换为 hlog 级别
func (c *Config) HlogLevel() hlog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
