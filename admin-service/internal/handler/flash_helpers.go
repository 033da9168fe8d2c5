package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"config-console/admin-service/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "flash_msg"
	flashSeparator  = "|"
	flashMaxAge     = 10 // seconds
)

type flashMessage struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

// flashStore signs flash cookies with HMAC-SHA256.
type flashStore struct {
	secret []byte
	secure bool
}

func (s flashStore) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(data)
	return mac.Sum(nil)
}

// set stores a signed flash cookie for the next request.
func (s flashStore) set(c *gin.Context, msgType, message string) error {
	if len(s.secret) == 0 {
		return errors.New("flash secret is not configured")
	}
	jsonData, err := json.Marshal(flashMessage{Type: msgType, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}

	value := base64.URLEncoding.EncodeToString(jsonData) + flashSeparator +
		base64.URLEncoding.EncodeToString(s.sign(jsonData))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, value, flashMaxAge, "/", "", s.secure, true)
	return nil
}

// pop reads, verifies and deletes the flash cookie. Tampered or malformed
// cookies are dropped silently.
func (s flashStore) pop(c *gin.Context) *web.Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, "", -1, "/", "", s.secure, true)

	encodedData, encodedSig, ok := strings.Cut(cookie, flashSeparator)
	if !ok || len(s.secret) == 0 {
		return nil
	}
	jsonData, err := base64.URLEncoding.DecodeString(encodedData)
	if err != nil {
		return nil
	}
	sig, err := base64.URLEncoding.DecodeString(encodedSig)
	if err != nil {
		return nil
	}
	if !hmac.Equal(s.sign(jsonData), sig) {
		return nil
	}

	var fm flashMessage
	if err := json.Unmarshal(jsonData, &fm); err != nil {
		return nil
	}
	return &web.Flash{Type: fm.Type, Message: fm.Message}
}
