package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Database   Database  `yaml:"database"`
	Storage    Storage   `yaml:"storage"`
	Images     Images    `yaml:"images"`
	Kafka      Kafka     `yaml:"kafka"`
	Auth       Auth      `yaml:"auth"`
	RateLimit  RateLimit `yaml:"rate_limit"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env-default:"localhost:8082"`
	Timeout        time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env-default:"52428800"`
}

type Database struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"images"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// Storage selects where image blobs live. Mode is "local" or "s3".
type Storage struct {
	Mode      string `yaml:"mode" env:"STORAGE_MODE" env-default:"local"`
	LocalRoot string `yaml:"local_root" env-default:"./media"`
	PublicURL string `yaml:"public_url" env:"STORAGE_PUBLIC_URL" env-default:"/media"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"image-backend-media"`
	Region    string `yaml:"region" env:"S3_REGION"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"true"`
}

type Images struct {
	MaxImgSize   int64 `yaml:"max_img_size" env:"MAX_IMG_SIZE" env-default:"5242880"`
	Quality      int   `yaml:"quality" env-default:"90"`
	MaxSide      int   `yaml:"max_side" env-default:"2400"`
	ReducePasses int   `yaml:"reduce_passes" env-default:"1"`
	MaxPixels    int64 `yaml:"max_pixels" env:"MAX_PIXELS" env-default:"50000000"`
	Workers      int   `yaml:"workers"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env-default:"image-blob-cleanup"`
	GroupID string   `yaml:"group_id" env-default:"image-backend"`
}

type Auth struct {
	Secret     string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL   time.Duration `yaml:"token_ttl" env-default:"24h"`
	CookieName string        `yaml:"cookie_name" env-default:"access_token"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"2"`
	Burst int     `yaml:"burst" env-default:"10"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("config path is not set")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
