package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("RECORDMOA_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("RECORDMOA_JWT_ISSUER")
	if issuer == "" {
		issuer = "recordmoa"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("RECORDMOA_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

// CloudinaryConfig carries the image CDN credentials. APIKey/APISecret
// are only needed by cmd/cleanup-images; unsigned uploads work with the
// cloud name and upload preset alone.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
}

func LoadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName:    os.Getenv("RECORDMOA_CLOUDINARY_CLOUD_NAME"),
		UploadPreset: os.Getenv("RECORDMOA_CLOUDINARY_UPLOAD_PRESET"),
		APIKey:       os.Getenv("RECORDMOA_CLOUDINARY_API_KEY"),
		APISecret:    os.Getenv("RECORDMOA_CLOUDINARY_API_SECRET"),
	}
}

type ServerConfig struct {
	Addr string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("RECORDMOA_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{Addr: addr}
}
