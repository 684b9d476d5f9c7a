package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"social-scheduler/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Scheduler   Scheduler   `json:"scheduler"`
	OAuth       OAuth       `json:"oauth"`
	Platforms   Platforms   `json:"platforms"`
	Media       Media       `json:"media"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type Database struct {
	Vendor string `json:"vendor"` // postgres | mssql
	Psql   Db     `json:"psql"`
	MySql  Db     `json:"mysql"`
	Mongo  Db     `json:"mongo"`
	Mssql  Db     `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	TopicID   string `json:"topicID"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	QueueName string `json:"queueName"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

// Scheduler configures the external durable scheduler and its callbacks.
type Scheduler struct {
	BaseURL            string `json:"baseURL"`
	Token              string `json:"token"`
	CurrentSigningKey  string `json:"currentSigningKey"`
	NextSigningKey     string `json:"nextSigningKey"`
	Issuer             string `json:"issuer"`
	CallbackBaseURL    string `json:"callbackBaseURL"`
	StaleWindowMinutes int    `json:"staleWindowMinutes"`
	TimeoutSeconds     int    `json:"timeoutSeconds"`
}

// OAuth holds third-party platform OAuth client credentials
type OAuth struct {
	Twitter  OAuthClient `json:"twitter"`
	LinkedIn OAuthClient `json:"linkedin"`
	YouTube  OAuthClient `json:"youtube"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	TokenURL     string `json:"tokenURL"`
}

// Platforms holds publish API locations and throttling.
type Platforms struct {
	TwitterBaseURL    string `json:"twitterBaseURL"`
	LinkedInBaseURL   string `json:"linkedInBaseURL"`
	LinkedInVersion   string `json:"linkedInVersion"`
	RequestsPerMinute int    `json:"requestsPerMinute"`
}

type Media struct {
	MaxBytes       int64        `json:"maxBytes"`
	TimeoutSeconds int          `json:"timeoutSeconds"`
	Archive        MediaArchive `json:"archive"`
}

type MediaArchive struct {
	Bucket        string `json:"bucket"`
	Region        string `json:"region"`
	Endpoint      string `json:"endpoint"`
	PublicBaseURL string `json:"publicBaseURL"`
}

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and applies environment overrides. Call it after
// loading extra variables with LoadEnvFromFile.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initScheduler(&C)
	initPlatforms(&C)
	initOAuth(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Vendor = getConfigValue(C.Database.Vendor, "DB_VENDOR", "postgres")
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	// Optional MSSQL config via environment variables (for Azure SQL in production)
	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	// MySQL backs the YouTube mirror table; empty host disables it.
	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "social_scheduler")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification; overrides config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if len(C.App.AllowedOrigins) == 0 {
		C.App.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; the schedule API rejects every request. Provide SECRET_KEY via environment.")
	}
}

func initScheduler(C *Config) {
	s := &C.Scheduler
	s.BaseURL = getConfigValue(s.BaseURL, "SCHEDULER_URL", "https://qstash.upstash.io")
	s.Token = getConfigValue(s.Token, "SCHEDULER_TOKEN", "")
	s.CurrentSigningKey = getConfigValue(s.CurrentSigningKey, "SCHEDULER_CURRENT_SIGNING_KEY", "")
	s.NextSigningKey = getConfigValue(s.NextSigningKey, "SCHEDULER_NEXT_SIGNING_KEY", "")
	s.Issuer = getConfigValue(s.Issuer, "SCHEDULER_ISSUER", "Upstash")
	s.CallbackBaseURL = getConfigValue(s.CallbackBaseURL, "SCHEDULER_CALLBACK_BASE_URL", fmt.Sprintf("http://localhost:%d", C.App.Port))
	if s.StaleWindowMinutes <= 0 {
		s.StaleWindowMinutes = 15
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = 10
	}
	if s.CurrentSigningKey == "" {
		logger.GetLogger().Warn("Scheduler signing keys not set; every webhook will be rejected")
	}
}

// StaleWindow is how late a trigger may fire and still publish.
func (s Scheduler) StaleWindow() time.Duration {
	return time.Duration(s.StaleWindowMinutes) * time.Minute
}

func (s Scheduler) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func initPlatforms(C *Config) {
	p := &C.Platforms
	p.TwitterBaseURL = getConfigValue(p.TwitterBaseURL, "TWITTER_API_URL", "https://api.twitter.com")
	p.LinkedInBaseURL = getConfigValue(p.LinkedInBaseURL, "LINKEDIN_API_URL", "https://api.linkedin.com")
	p.LinkedInVersion = getConfigValue(p.LinkedInVersion, "LINKEDIN_VERSION", "202405")
	if p.RequestsPerMinute <= 0 {
		p.RequestsPerMinute = 60
	}
	if C.Media.MaxBytes <= 0 {
		C.Media.MaxBytes = 256 << 20
	}
	if C.Media.TimeoutSeconds <= 0 {
		C.Media.TimeoutSeconds = 120
	}
	C.Media.Archive.Bucket = getConfigValue(C.Media.Archive.Bucket, "MEDIA_ARCHIVE_BUCKET", "")
	C.Media.Archive.Region = getConfigValue(C.Media.Archive.Region, "AWS_REGION", "us-east-1")
	C.Media.Archive.Endpoint = getConfigValue(C.Media.Archive.Endpoint, "MEDIA_ARCHIVE_ENDPOINT", "")
}
