package i18n

import (
	"embed"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// LocalizerKey is the fiber Locals key under which the language middleware
// stores the request-scoped localizer.
const LocalizerKey = "localizer"

// SupportedLanguages lists the locales shipped with the service
var SupportedLanguages = []string{"en", "es", "fr"}

var bundle *goi18n.Bundle

func init() {
	bundle = goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, lang := range SupportedLanguages {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+lang+".json"); err != nil {
			panic("i18n: failed to load locale " + lang + ": " + err.Error())
		}
	}
}

// NewLocalizer builds a localizer for the given language preferences,
// falling back to English.
func NewLocalizer(langs ...string) *goi18n.Localizer {
	return goi18n.NewLocalizer(bundle, append(langs, "en")...)
}

// IsSupported reports whether lang is one of the shipped locales
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// T resolves a message key using the request's localizer. Unknown keys are
// returned as-is so a missing catalog entry never breaks a response.
func T(c *fiber.Ctx, key string) string {
	loc, ok := c.Locals(LocalizerKey).(*goi18n.Localizer)
	if !ok {
		loc = NewLocalizer()
	}

	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}
