// Package auth implements Telegram-login verification, bearer token
// issuance, and role-gated request auth contexts.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tgwatch/tgwatch/internal/errs"
)

// LoginPayload is the Telegram login-widget callback data.
type LoginPayload struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

const maxLoginAge = 24 * time.Hour

// VerifyLogin recomputes the HMAC-SHA256 data-check string per Telegram's
// login widget protocol and rejects stale or tampered payloads.
func VerifyLogin(p LoginPayload, botToken string) error {
	if time.Since(time.Unix(p.AuthDate, 0)) > maxLoginAge {
		return errs.NewUnauthenticated("login payload expired")
	}
	fields := map[string]string{
		"id":        strconv.FormatInt(p.ID, 10),
		"first_name": p.FirstName,
		"auth_date": strconv.FormatInt(p.AuthDate, 10),
	}
	if p.LastName != "" {
		fields["last_name"] = p.LastName
	}
	if p.Username != "" {
		fields["username"] = p.Username
	}
	if p.PhotoURL != "" {
		fields["photo_url"] = p.PhotoURL
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	dataCheckString := strings.Join(parts, "\n")

	secretKey := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(p.Hash))) {
		return errs.NewUnauthenticated("login hash mismatch")
	}
	return nil
}
