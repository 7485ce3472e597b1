// Command issue-token mints an access token signed with the configured JWT
// secret. It bootstraps the first admin before any token can be issued over HTTP.
package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/noah-isme/faculty-achievement-api/internal/dto"
	"github.com/noah-isme/faculty-achievement-api/internal/service"
	"github.com/noah-isme/faculty-achievement-api/pkg/config"
	"github.com/noah-isme/faculty-achievement-api/pkg/logger"
)

func main() {
	var req dto.IssueTokenRequest
	flag.StringVarP(&req.UserID, "user", "u", "", "subject user id (required)")
	flag.StringVarP(&req.Role, "role", "r", "ADMIN", "ADMIN, HOD or FACULTY")
	flag.StringVarP(&req.FacultyID, "faculty", "f", "", "faculty id, required for FACULTY")
	flag.StringVar(&req.Department, "department", "", "department claim")
	flag.DurationVar(&req.TTL, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	auth := service.NewAuthService(nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	res, err := auth.IssueToken(req)
	if err != nil {
		logr.Sugar().Fatalw("failed to issue token", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(struct {
		AccessToken string `json:"accessToken"`
		ExpiresAt   string `json:"expiresAt"`
	}{res.AccessToken, res.ExpiresAt.UTC().Format(time.RFC3339)})
}
