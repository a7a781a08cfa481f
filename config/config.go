package config

import "os"

type Config struct {
	Env           string
	Port          string
	Origin        string // CORS
	JWTSecret     string
	DataFile      string
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	IssueLimit    int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() Config {
	return Config{
		Env:           env("GO_ENV", "dev"),
		Port:          env("PORT", "8080"),
		Origin:        env("CORS_ORIGIN", "http://localhost:3000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DataFile:      env("DATA_FILE", "data/mockData.json"),
		RedisAddr:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		IssueLimit:    10,
	}
}
