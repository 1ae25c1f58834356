package middleware

import (
	"strings"
	"time"

	"accounthub/internal/pkg/i18n"

	"github.com/gofiber/fiber/v2"
)

const languageCookie = "lng"

// Language resolves the request language from the ?lng= query parameter,
// the Accept-Language header, or the lng cookie (in that order), stores a
// request-scoped localizer in Locals, and persists the choice in a cookie.
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := pickLanguage(c)

		c.Locals(i18n.LocalizerKey, i18n.NewLocalizer(lang))

		if c.Cookies(languageCookie) != lang {
			c.Cookie(&fiber.Cookie{
				Name:     languageCookie,
				Value:    lang,
				Path:     "/",
				Expires:  time.Now().Add(7 * 24 * time.Hour),
				HTTPOnly: true,
			})
		}

		return c.Next()
	}
}

func pickLanguage(c *fiber.Ctx) string {
	candidates := []string{
		c.Query("lng"),
		firstAcceptLanguage(c.Get("Accept-Language")),
		c.Cookies(languageCookie),
	}

	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if i18n.IsSupported(cand) {
			return cand
		}
	}
	return "en"
}

// firstAcceptLanguage extracts the base language of the first entry of an
// Accept-Language header ("es-MX,es;q=0.9" -> "es")
func firstAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(header, ",")[0])
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, '-'); i >= 0 {
		first = first[:i]
	}
	return strings.ToLower(strings.TrimSpace(first))
}
