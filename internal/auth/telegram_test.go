package auth_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/tgwatch/tgwatch/internal/auth"
)

const botToken = "123456:ABC-DEF"

func signedPayload(p auth.LoginPayload, botToken string) auth.LoginPayload {
	fields := map[string]string{
		"id":         strconv.FormatInt(p.ID, 10),
		"first_name": p.FirstName,
		"auth_date":  strconv.FormatInt(p.AuthDate, 10),
	}
	if p.LastName != "" {
		fields["last_name"] = p.LastName
	}
	if p.Username != "" {
		fields["username"] = p.Username
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
	p.Hash = hex.EncodeToString(mac.Sum(nil))
	return p
}

func TestVerifyLoginAcceptsACorrectlySignedPayload(t *testing.T) {
	g := NewWithT(t)
	payload := signedPayload(auth.LoginPayload{
		ID:        42,
		FirstName: "Ada",
		Username:  "ada",
		AuthDate:  time.Now().Unix(),
	}, botToken)

	g.Expect(auth.VerifyLogin(payload, botToken)).NotTo(HaveOccurred())
}

func TestVerifyLoginRejectsWrongBotToken(t *testing.T) {
	g := NewWithT(t)
	payload := signedPayload(auth.LoginPayload{ID: 42, FirstName: "Ada", AuthDate: time.Now().Unix()}, botToken)

	g.Expect(auth.VerifyLogin(payload, "a-different-token")).To(HaveOccurred())
}

func TestVerifyLoginRejectsTamperedField(t *testing.T) {
	g := NewWithT(t)
	payload := signedPayload(auth.LoginPayload{ID: 42, FirstName: "Ada", AuthDate: time.Now().Unix()}, botToken)
	payload.FirstName = "Eve"

	g.Expect(auth.VerifyLogin(payload, botToken)).To(HaveOccurred())
}

func TestVerifyLoginRejectsStalePayload(t *testing.T) {
	g := NewWithT(t)
	payload := signedPayload(auth.LoginPayload{
		ID:        42,
		FirstName: "Ada",
		AuthDate:  time.Now().Add(-48 * time.Hour).Unix(),
	}, botToken)

	g.Expect(auth.VerifyLogin(payload, botToken)).To(HaveOccurred())
}
