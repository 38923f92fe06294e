package language

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Name returns the English display name of a tag, e.g. "ne" -> "Nepali".
func Name(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}

// baseTag reduces a tag like "en-US" to its base language "en".
func baseTag(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", err
	}
	base, _ := t.Base()
	return base.String(), nil
}
