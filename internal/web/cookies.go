package web

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const CSRFContextKey = "csrf"

// Cookies names and flags the cookies of one app. Prefix keeps the two apps
// apart when they share a host.
type Cookies struct {
	Prefix string
	Secure bool
}

func (cookies Cookies) SessionName() string {
	return cookies.Prefix + "_session"
}

func (cookies Cookies) FlashName() string {
	return cookies.Prefix + "_flash"
}

func (cookies Cookies) CSRFName() string {
	return cookies.Prefix + "_csrf"
}

func (cookies Cookies) SetSession(c *fiber.Ctx, value string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cookies.SessionName(),
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   cookies.Secure,
		SameSite: "Lax",
		Expires:  expiresAt,
	})
}

func (cookies Cookies) Session(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies(cookies.SessionName()))
}

func (cookies Cookies) ClearSession(c *fiber.Ctx) {
	cookies.expire(c, cookies.SessionName())
}

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Error    string `json:"error,omitempty"`
	Success  string `json:"success,omitempty"`
	Username string `json:"username,omitempty"`
}

func (flash Flash) normalized() Flash {
	return Flash{
		Error:    strings.TrimSpace(flash.Error),
		Success:  strings.TrimSpace(flash.Success),
		Username: strings.TrimSpace(flash.Username),
	}
}

func (flash Flash) Empty() bool {
	return flash.Error == "" && flash.Success == "" && flash.Username == ""
}

func (cookies Cookies) SetFlash(c *fiber.Ctx, flash Flash) {
	flash = flash.normalized()
	if flash.Empty() {
		cookies.expire(c, cookies.FlashName())
		return
	}

	serialized, err := json.Marshal(flash)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookies.FlashName(),
		Value:    base64.RawURLEncoding.EncodeToString(serialized),
		Path:     "/",
		HTTPOnly: true,
		Secure:   cookies.Secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// PopFlash reads and clears the flash cookie.
func (cookies Cookies) PopFlash(c *fiber.Ctx) Flash {
	raw := strings.TrimSpace(c.Cookies(cookies.FlashName()))
	if raw == "" {
		return Flash{}
	}
	cookies.expire(c, cookies.FlashName())

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Flash{}
	}
	flash := Flash{}
	if err := json.Unmarshal(decoded, &flash); err != nil {
		return Flash{}
	}
	return flash.normalized()
}

func (cookies Cookies) expire(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   cookies.Secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
