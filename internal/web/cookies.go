package web

import (
	"net/http"
	"time"
)

// Cookies adapts one request/response pair to the auth.CookieJar interface.
// Writes are tracked locally so a value set earlier in the request is visible
// to later reads, the way browser round trips would make it.
type Cookies struct {
	w         http.ResponseWriter
	r         *http.Request
	overrides map[string]*string // nil entry marks a deletion
}

func NewCookies(w http.ResponseWriter, r *http.Request) *Cookies {
	return &Cookies{w: w, r: r, overrides: make(map[string]*string)}
}

func (c *Cookies) Exists(name string) bool {
	if value, ok := c.overrides[name]; ok {
		return value != nil
	}
	cookie, err := c.r.Cookie(name)
	return err == nil && cookie.Value != ""
}

func (c *Cookies) Get(name string) string {
	if value, ok := c.overrides[name]; ok {
		if value == nil {
			return ""
		}
		return *value
	}
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *Cookies) Set(name, value string, expires time.Time) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	c.overrides[name] = &value
}

func (c *Cookies) Delete(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	c.overrides[name] = nil
}
