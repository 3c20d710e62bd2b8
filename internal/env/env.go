package env

import (
	"os"
)

const (
	AWSRegion          = "AWS_REGION"
	AWSID              = "AWS_ID"
	AWSSecret          = "AWS_SECRET"
	AWSToken           = "AWS_TOKEN"
	DynamoDBEndpoint   = "DYNAMODB_ENDPOINT"
	JWTSecret          = "JWT_SECRET"
	UserRedisURL       = "USER_REDIS_URL"
	UserRedisPass      = "USER_REDIS_PASS"
	GoogleClientID     = "GOOGLE_CLIENT_ID"
	GoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	GoogleRedirectURI  = "GOOGLE_REDIRECT_URI"
	FrontendURL        = "FRONTEND_URL"
)

// MustCheck panics unless every variable the server cannot run without is
// set. Called once from main so test binaries stay importable. Only the
// region and the signing secret are hard requirements: AWS credentials fall
// back to the default provider chain, the Redis cache degrades to
// pass-through when unset, and the frontend URL has a localhost default.
func MustCheck() {
	required := []string{
		AWSRegion,
		JWTSecret,
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			panic("env: required environment variable not set: " + key)
		}
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
