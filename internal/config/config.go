package config

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Robot
	RobotID string

	// Movement
	DriveDuration time.Duration
	DriveTick     time.Duration
	SettleTick    time.Duration
	RotateTick    time.Duration
	RotateTimeout time.Duration
	ResetTimeout  time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	// Application
	HTTPAddr       string
	LogLevel       string
	StatusInterval time.Duration
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the environment only
func FromEnv() *Config {
	robotID := getEnv("ROBOT_ID", "turtlebot")

	return &Config{
		RobotID:        robotID,
		DriveDuration:  seconds("DRIVE_DURATION_SECONDS", 4),
		DriveTick:      millis("DRIVE_TICK_MS", 100),
		SettleTick:     millis("SETTLE_TICK_MS", 500),
		RotateTick:     millis("ROTATE_TICK_MS", 1000),
		RotateTimeout:  seconds("ROTATE_TIMEOUT_SECONDS", 0),
		ResetTimeout:   seconds("RESET_TIMEOUT_SECONDS", 0),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "movement_server"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),
		MQTTBroker:     getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:   getEnv("MQTT_CLIENT_ID", "movement_server_"+robotID),
		MQTTUsername:   getEnv("MQTT_USERNAME", ""),
		MQTTPassword:   getEnv("MQTT_PASSWORD", ""),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StatusInterval: millis("STATUS_INTERVAL_MS", 1000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

// maxSeconds largest value that still fits a time.Duration
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// seconds accepts fractional values, e.g. DRIVE_DURATION_SECONDS=2.5
func seconds(key string, defaultValue float64) time.Duration {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > maxSeconds {
		v = defaultValue
	}
	return time.Duration(v * float64(time.Second))
}

func millis(key string, defaultValue int) time.Duration {
	v := getInt(key, defaultValue)
	if v <= 0 {
		v = defaultValue
	}
	return time.Duration(v) * time.Millisecond
}
