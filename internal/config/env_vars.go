package config

import (
	"strings"
)

type EnvVars struct {
	Port        string `env:"PORT" envDefault:"3000"`
	AppName     string `env:"APP_NAME" envDefault:"Workspace Auth"`
	Environment string `env:"ENV" envDefault:"DEV"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := strings.TrimSpace(e.Port)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Environment == "" {
		return "DEV"
	}
	return e.Environment
}

// GetBaseURL returns the externally visible base URL of this application (e.g., "https://app.example.com")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/")
}
