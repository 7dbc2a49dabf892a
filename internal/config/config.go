package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultPort                = ":5000"
	defaultBodyLimit           = "2G"
	defaultFFmpegPath          = "ffmpeg"
	defaultSegmentDuration     = 10
	defaultTranscodeTimeout    = 1800
	defaultSweepInterval       = 600
	defaultOrphanGracePeriod   = 7200
	defaultCompensationTimeout = 60
	defaultWorkerCount         = 2
	defaultQueueSize           = 16
	defaultUploadConcurrency   = 4
	defaultCPUCheckInterval    = 10
	defaultJobKeyPrefix        = "video:job:"
	defaultJobChannel          = "video_jobs_channel"
	defaultJobTTL              = 86400
)

type Config struct {
	Server     ServerConfig
	Postgres   DBConfig
	Redis      RedisConfig
	S3         S3Config
	Logger     Logger
	Worker     WorkerConfig
	Transcoder TranscoderConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
	BodyLimit    string
	AllowOrigins []string
	ReadTimeout  int
	WriteTimeout int
}

type WorkerConfig struct {
	WorkerCount       int
	MaxCPUUsage       float64
	QueueSize         int
	UploadConcurrency int
	CPUCheckInterval  int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
	SSLMode  string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
	JobKeyPrefix  string
	JobChannel    string
	JobTTL        int
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	KeyPrefix     string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

// TranscoderConfig times are in seconds.
type TranscoderConfig struct {
	FFmpegPath          string
	WorkDir             string
	SegmentDuration     int
	Timeout             int
	SweepInterval       int
	OrphanGracePeriod   int
	CompensationTimeout int
}

func (t TranscoderConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}

func (t TranscoderConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(t.SweepInterval) * time.Second
}

func (t TranscoderConfig) GracePeriod() time.Duration {
	return time.Duration(t.OrphanGracePeriod) * time.Second
}

func (t TranscoderConfig) CompensationTimeoutDuration() time.Duration {
	return time.Duration(t.CompensationTimeout) * time.Second
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if c.S3.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = defaultBodyLimit
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Transcoder.FFmpegPath == "" {
		c.Transcoder.FFmpegPath = defaultFFmpegPath
	}
	if c.Transcoder.WorkDir == "" {
		c.Transcoder.WorkDir = filepath.Join(os.TempDir(), "video-ingest")
	}
	if c.Transcoder.SegmentDuration <= 0 {
		c.Transcoder.SegmentDuration = defaultSegmentDuration
	}
	if c.Transcoder.Timeout <= 0 {
		c.Transcoder.Timeout = defaultTranscodeTimeout
	}
	if c.Transcoder.SweepInterval <= 0 {
		c.Transcoder.SweepInterval = defaultSweepInterval
	}
	if c.Transcoder.OrphanGracePeriod <= 0 {
		c.Transcoder.OrphanGracePeriod = defaultOrphanGracePeriod
	}
	if c.Transcoder.CompensationTimeout <= 0 {
		c.Transcoder.CompensationTimeout = defaultCompensationTimeout
	}
	if c.Worker.WorkerCount <= 0 {
		c.Worker.WorkerCount = defaultWorkerCount
	}
	if c.Worker.QueueSize <= 0 {
		c.Worker.QueueSize = defaultQueueSize
	}
	if c.Worker.UploadConcurrency <= 0 {
		c.Worker.UploadConcurrency = defaultUploadConcurrency
	}
	if c.Worker.CPUCheckInterval <= 0 {
		c.Worker.CPUCheckInterval = defaultCPUCheckInterval
	}
	if c.Redis.JobKeyPrefix == "" {
		c.Redis.JobKeyPrefix = defaultJobKeyPrefix
	}
	if c.Redis.JobChannel == "" {
		c.Redis.JobChannel = defaultJobChannel
	}
	if c.Redis.JobTTL <= 0 {
		c.Redis.JobTTL = defaultJobTTL
	}
}
