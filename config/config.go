package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	Env                string
	MongoURI           string
	MongoDB            string
	RedisURL           string
	AccessTokenSecret  string
	RefreshTokenSecret string
	StripeSecretKey    string
	ClientURL          string
	S3Bucket           string
	AWSRegion          string
}

func Load() Config {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	return Config{
		Port:               getEnv("PORT", "5000"),
		Env:                getEnv("ENV", "development"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "shophub"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
		S3Bucket:           getEnv("AWS_S3_BUCKET_NAME", ""),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
