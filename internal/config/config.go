package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string
	LogLevel                     string

	// StoreBackend selects the document store: "firestore" or "memory".
	StoreBackend string

	// DirectoryPreconditions makes every read-modify-write of a directory
	// address's event list conditional on the document's last update time.
	DirectoryPreconditions bool
}

func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", "firestore")
	v.SetDefault("DIRECTORY_PRECONDITIONS", false)

	// .env is optional; the process environment wins either way
	_ = v.ReadInConfig()

	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := v.GetString("FIREBASE_PROJECT_ID")
	if projectID == "" {
		projectID = v.GetString("GOOGLE_CLOUD_PROJECT")
	}

	storageBucket := v.GetString("FIREBASE_STORAGE_BUCKET")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         v.GetString("PORT"),
		AllowedOrigins:               splitList(v.GetString("ALLOWED_ORIGINS")),
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: v.GetString("SIGNED_URL_SERVICE_ACCOUNT_EMAIL"),
		LogLevel:                     strings.ToLower(v.GetString("LOG_LEVEL")),
		StoreBackend:                 strings.ToLower(v.GetString("STORE_BACKEND")),
		DirectoryPreconditions:       v.GetBool("DIRECTORY_PRECONDITIONS"),
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
