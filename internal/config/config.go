package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`

		// PublicURL is the site link of the RSS feed.
		PublicURL string `mapstructure:"public_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Stats struct {
		// Endpoints overrides the base URL of a platform, keyed by platform ID.
		Endpoints      map[string]string `mapstructure:"endpoints"`
		RequestTimeout time.Duration     `mapstructure:"request_timeout"`
		CacheTTL       time.Duration     `mapstructure:"cache_ttl"`
	} `mapstructure:"stats"`
	Profile struct {
		ErrorDisplay time.Duration `mapstructure:"error_display"`
		LoadingDelay time.Duration `mapstructure:"loading_delay"`
		SessionTTL   time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"profile"`
}

// LoadConfig reads config.yaml from the given paths (default ".") and overlays the environment.
func LoadConfig(paths ...string) (cfg Config, err error) {
	v := viper.New()

	err = godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.public_url", "APP_PUBLIC_URL")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	v.BindEnv("stats.request_timeout", "STATS_REQUEST_TIMEOUT")
	v.BindEnv("stats.cache_ttl", "STATS_CACHE_TTL")
	v.BindEnv("profile.error_display", "PROFILE_ERROR_DISPLAY")
	v.BindEnv("profile.loading_delay", "PROFILE_LOADING_DELAY")
	v.BindEnv("profile.session_ttl", "PROFILE_SESSION_TTL")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.public_url", "http://localhost:8080")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("stats.request_timeout", 10*time.Second)
	v.SetDefault("stats.cache_ttl", 5*time.Minute)
	v.SetDefault("profile.error_display", 3*time.Second)
	v.SetDefault("profile.loading_delay", time.Second)
	v.SetDefault("profile.session_ttl", 24*time.Hour)
}
