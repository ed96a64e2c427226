package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Model      ModelConfig
	Recorder   RecorderConfig
	Storage    StorageConfig
	Minio      MinioConfig
	GCS        GCSConfig
	MQ         MQConfig
	PubSub     PubSubConfig
	RabbitMQ   RabbitMQConfig
	Search     SearchConfig
	Dispatcher DispatcherConfig
}

// DatabaseConfig selects the credential-store backend. Driver is either
// "sqlite" (default) or "postgres"; Path applies to sqlite, the remaining
// fields to postgres.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// ModelConfig locates the classifier weights and the chest X-ray image
// directory used by vague-reference resolution.
type ModelConfig struct {
	WeightsPath string
	ImageDir    string
	Threshold   float64
}

type RecorderConfig struct {
	InferenceCSVPath string
	AuditCSVPath     string
}

// StorageConfig selects the report artifact store backend: "minio" or "gcs".
type StorageConfig struct {
	Backend string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// MQConfig selects the event broker backend: "none", "pubsub" or "rabbitmq".
type MQConfig struct {
	Backend string
	Channel string
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

// SearchConfig configures the medical Q&A pass-through. Leaving both fields
// empty disables the capability.
type SearchConfig struct {
	APIKey   string
	EngineID string
}

// DispatcherConfig points at the external LLM orchestrator that maps
// free-text utterances to capabilities. Empty URL disables chat routing.
type DispatcherConfig struct {
	URL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Path:     getEnv("DB_PATH", "data/users.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "lungsight"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "lungsight_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	modelConfig := ModelConfig{
		WeightsPath: getEnv("MODEL_WEIGHTS_PATH", "data/model/vgg_cxr.weights"),
		ImageDir:    getEnv("CXR_IMAGE_DIR", "data/cxr-images"),
		Threshold:   getEnvFloat("MODEL_THRESHOLD", 0.3),
	}

	recorderConfig := RecorderConfig{
		InferenceCSVPath: getEnv("INFERENCE_CSV_PATH", "data/csv/user_inferences.csv"),
		AuditCSVPath:     getEnv("AUDIT_CSV_PATH", "data/csv/user_details.csv"),
	}

	minioConfig := MinioConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "lungsight-reports"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}

	gcsConfig := GCSConfig{
		Bucket:          getEnv("GCS_BUCKET", ""),
		ProjectID:       getEnv("GCS_PROJECT_ID", ""),
		CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	pubsubConfig := PubSubConfig{
		ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
		CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
	}

	rabbitConfig := RabbitMQConfig{
		URL:             getEnv("RABBITMQ_URL", ""),
		QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
		QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
		PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Model:      modelConfig,
		Recorder:   recorderConfig,
		Storage:    StorageConfig{Backend: getEnv("STORAGE_BACKEND", "minio")},
		Minio:      minioConfig,
		GCS:        gcsConfig,
		MQ: MQConfig{
			Backend: getEnv("MQ_BACKEND", "none"),
			Channel: getEnv("MQ_CHANNEL", "cxr.inference.recorded"),
		},
		PubSub:   pubsubConfig,
		RabbitMQ: rabbitConfig,
		Search: SearchConfig{
			APIKey:   getEnv("SEARCH_API_KEY", ""),
			EngineID: getEnv("SEARCH_ENGINE_ID", ""),
		},
		Dispatcher: DispatcherConfig{
			URL: getEnv("DISPATCHER_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
