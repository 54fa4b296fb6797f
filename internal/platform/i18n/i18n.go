// Package i18n resolves locale codes for content delivery.
//
// The CMS scopes content by locale records seeded at setup time; this
// package owns the mapping between those records' BCP 47 codes and
// golang.org/x/text language tags, including Accept-Language matching
// for the content API.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// DefaultCode is the source language every demo page is authored in.
	DefaultCode = "en"
)

// SeedCodes are the locale codes provisioned by the setup command.
var SeedCodes = []string{"en", "fr", "es", "de"}

var supportedTags = []language.Tag{
	language.English,
	language.French,
	language.Spanish,
	language.German,
}

var tagMatcher = language.NewMatcher(Supported())
var supportedTagSet = make(map[string]language.Tag, len(supportedTags))

func init() {
	for _, tag := range supportedTags {
		supportedTagSet[tag.String()] = tag
	}
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// ParseTag parses value as a supported language tag.
func ParseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Tag{}, false
	}
	if tag, ok := supportedTagSet[parsed.String()]; ok {
		return tag, true
	}
	return language.Tag{}, false
}

// NormalizeCode canonicalizes a locale code through x/text parsing.
func NormalizeCode(value string) (string, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// ResolveCode determines the best locale code for the request.
//
// Precedence: explicit lang query parameter, then Accept-Language
// negotiation, then the default source locale.
func ResolveCode(r *http.Request) string {
	if r == nil {
		return DefaultCode
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := ParseTag(langValue); ok {
			return tag.String()
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			if _, index, conf := tagMatcher.Match(tags...); conf > language.No {
				return supportedTags[index].String()
			}
		}
	}

	return DefaultCode
}
