package sarvam

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one language the voice assistant can listen and speak in.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Voice      string `json:"voice"`
}

const DefaultLanguage = "en"

var voices = map[string]string{
	"en": "en-US-Neural2-F",
	"hi": "hi-IN-Neural2-A",
	"ta": "ta-IN-Neural2-A",
	"te": "te-IN-Neural2-A",
	"kn": "kn-IN-Neural2-A",
	"ml": "ml-IN-Neural2-A",
	"bn": "bn-IN-Neural2-A",
	"gu": "gu-IN-Neural2-A",
	"mr": "mr-IN-Neural2-A",
}

var supportedOrder = []string{"en", "hi", "ta", "te", "kn", "ml", "bn", "gu", "mr"}

// SupportedLanguages lists every language in display order.
func SupportedLanguages() []Language {
	out := make([]Language, 0, len(supportedOrder))
	for _, code := range supportedOrder {
		out = append(out, describe(code))
	}
	return out
}

func describe(code string) Language {
	tag := language.Make(code)
	return Language{
		Code:       code,
		Name:       display.English.Tags().Name(tag),
		NativeName: display.Self.Name(tag),
		Voice:      voices[code],
	}
}

// Canonical reduces a tag such as "hi-IN" or "HI" to its base code and
// reports whether that code is supported.
func Canonical(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	c := base.String()
	_, ok := voices[c]
	return c, ok
}

// Lookup returns the language for code, or English when code is not
// supported.
func Lookup(code string) Language {
	c, ok := Canonical(code)
	if !ok {
		c = DefaultLanguage
	}
	return describe(c)
}
