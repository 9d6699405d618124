package config

import (
	"fmt"
	"os"
	"strings"
)

// App holds the settings of the HTTP server process.
type App struct {
	Development bool
	Port        string
	BasePath    string
	// AllowedOrigins feeds both CORS and the websocket origin check. Empty
	// means any origin.
	AllowedOrigins []string
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

func NewApp() (*App, error) {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok {
		port = "8000"
	}
	if strings.TrimSpace(port) == "" {
		return nil, fmt.Errorf("APP_PORT env variable is empty")
	}

	basePath := strings.TrimSuffix(os.Getenv("APP_BASE_PATH"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("APP_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &App{
		Development:    Development(),
		Port:           port,
		BasePath:       basePath,
		AllowedOrigins: origins,
	}, nil
}

func (a App) Addr() string {
	return ":" + a.Port
}
