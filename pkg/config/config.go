// Package config reads environment configuration with fallbacks.
package config

import (
	"os"
	"strings"
)

// GetEnv returns the environment value for key, or fallback when unset or
// empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

var (
	DBPath      = GetEnv("OPENLGU_DB", "openlgu.db")
	IndexPath   = GetEnv("OPENLGU_INDEX", "openlgu.bleve")
	Addr        = GetEnv("OPENLGU_ADDR", ":8080")
	AdminTokens = GetEnv("OPENLGU_ADMIN_TOKENS", "")
	ReviewCron  = GetEnv("OPENLGU_REVIEW_CRON", "0 2 * * *")
)

// ParseAdminTokens parses comma-separated token:username pairs into a
// token lookup table. Malformed pairs are dropped.
func ParseAdminTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || user == "" {
			continue
		}
		tokens[token] = user
	}
	return tokens
}
