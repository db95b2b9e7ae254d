package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Sink mode selects which DMS Kinesis target settings the stack provisions.
// The extended mode additionally captures DDL operations and null/empty
// column values on the stream.
type Mode string

const (
	ModeDefault  Mode = "default"
	ModeExtended Mode = "extended"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case "", ModeDefault:
		return ModeDefault, nil
	case ModeExtended:
		return ModeExtended, nil
	}
	return "", fmt.Errorf("unknown sink mode %q (want %q or %q)", value, ModeDefault, ModeExtended)
}

// Env holds the runtime environment shared by the CDK app and the harness.
type Env struct {
	StackName   string
	EndpointURL string
	SinkMode    Mode
}

// Local reports whether the run targets an emulated endpoint instead of AWS.
func (e Env) Local() bool {
	return e.EndpointURL != ""
}

// LoadEnv reads the process environment, with .env as a fallback source.
func LoadEnv() (Env, error) {
	// .env is optional; real deployments set everything in the environment.
	_ = godotenv.Load()

	mode, err := ParseMode(os.Getenv("SINK_MODE"))
	if err != nil {
		return Env{}, err
	}

	return Env{
		StackName:   getEnv("STACK_NAME", "DmsCdcStack"),
		EndpointURL: os.Getenv("ENDPOINT_URL"),
		SinkMode:    mode,
	}, nil
}

// CheckEnv is used by the CDK app for values that have no sane default.
func CheckEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("WARNING: %s environment variable is required!", key)
	}
	return value
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
