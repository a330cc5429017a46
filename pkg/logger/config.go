package logger

// Level 日志等级
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// RotationType 轮换类型
type RotationType string

const (
	RotationBySize RotationType = "size"
	RotationByTime RotationType = "time"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level" json:"level"`
	Format Format `mapstructure:"format" json:"format"`

	EnableConsole bool   `mapstructure:"enable_console" json:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file" json:"enable_file"`
	OutputPath    string `mapstructure:"output_path" json:"output_path"`

	TimeFormat string `mapstructure:"time_format" json:"time_format"`

	Rotation RotationConfig `mapstructure:"rotation" json:"rotation"`

	EnableStacktrace bool  `mapstructure:"enable_stacktrace" json:"enable_stacktrace"`
	StacktraceLevel  Level `mapstructure:"stacktrace_level" json:"stacktrace_level"`

	// 开发模式: 彩色等级输出
	Development bool `mapstructure:"development" json:"development"`

	GlobalFields map[string]interface{} `mapstructure:"global_fields" json:"global_fields"`
}

// RotationConfig 文件轮换配置
type RotationConfig struct {
	Type RotationType `mapstructure:"type" json:"type"`

	// 按大小轮换 (lumberjack)
	MaxSize    int  `mapstructure:"max_size" json:"max_size"`       // MB
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups"` // 保留的旧文件数量
	MaxAge     int  `mapstructure:"max_age" json:"max_age"`         // 天
	Compress   bool `mapstructure:"compress" json:"compress"`

	// 按时间轮换 (file-rotatelogs)
	RotationTime    string `mapstructure:"rotation_time" json:"rotation_time"`
	MaxAgeTime      string `mapstructure:"max_age_time" json:"max_age_time"`
	RotationPattern string `mapstructure:"rotation_pattern" json:"rotation_pattern"`
}

// DefaultConfig 默认只输出到控制台
func DefaultConfig() *Config {
	return &Config{
		Level:         InfoLevel,
		Format:        ConsoleFormat,
		EnableConsole: true,
		TimeFormat:    "2006-01-02 15:04:05.000",
		Rotation: RotationConfig{
			Type:            RotationBySize,
			MaxSize:         100,
			MaxBackups:      5,
			MaxAge:          7,
			Compress:        true,
			RotationTime:    "24h",
			MaxAgeTime:      "168h",
			RotationPattern: ".%Y%m%d",
		},
		EnableStacktrace: true,
		StacktraceLevel:  ErrorLevel,
		GlobalFields:     make(map[string]interface{}),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.EnableFile && c.OutputPath == "" {
		return ErrInvalidOutputPath
	}
	switch c.Level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
	default:
		return ErrInvalidLevel
	}
	return nil
}
