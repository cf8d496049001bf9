package config

import (
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Task        TaskConfig        `mapstructure:"task"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Payment     PaymentConfig     `mapstructure:"payment"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	Interval   int `mapstructure:"interval"`    // 活动评估轮询间隔（秒）
	PoolSize   int `mapstructure:"pool_size"`   // 活动评估协程池大小
	MaxRetries int `mapstructure:"max_retries"` // 打款重试次数上限
}

// MarketplaceConfig 二级市场配置
type MarketplaceConfig struct {
	MinTrustScore    int   `mapstructure:"min_trust_score"`    // 挂牌准入信任分
	MinPrice         int64 `mapstructure:"min_price"`          // 挂牌最低价格
	MaxPrice         int64 `mapstructure:"max_price"`          // 挂牌最高价格
	MinDiscount      int   `mapstructure:"min_discount"`       // legacy share 折扣下限（%）
	MaxDiscount      int   `mapstructure:"max_discount"`       // legacy share 折扣上限（%）
	MinRoyalty       int   `mapstructure:"min_royalty"`        // 分成比例下限（%）
	MaxRoyalty       int   `mapstructure:"max_royalty"`        // 分成比例上限（%）
	MinDurationMonth int   `mapstructure:"min_duration_month"` // 分成期限下限（月）
	MaxDurationMonth int   `mapstructure:"max_duration_month"` // 分成期限上限（月）
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	Provider string `mapstructure:"provider"`  // 网关类型（sandbox, stripe, ...）
	PoolName string `mapstructure:"pool_name"` // 未达标资金池账户名
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/obsidian-order")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "obsidian_order")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.pool_size", 8)
	viper.SetDefault("task.max_retries", 5)
	viper.SetDefault("marketplace.min_trust_score", 75)
	viper.SetDefault("marketplace.min_price", 1000)
	viper.SetDefault("marketplace.max_price", 1000000)
	viper.SetDefault("marketplace.min_discount", 5)
	viper.SetDefault("marketplace.max_discount", 30)
	viper.SetDefault("marketplace.min_royalty", 5)
	viper.SetDefault("marketplace.max_royalty", 20)
	viper.SetDefault("marketplace.min_duration_month", 12)
	viper.SetDefault("marketplace.max_duration_month", 36)
	viper.SetDefault("payment.provider", "sandbox")
	viper.SetDefault("payment.pool_name", "unfunded_pool")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
