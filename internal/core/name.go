// Package core holds pure helpers for service names: validation, image tags,
// display titles and shell quoting of printed commands.
package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

// ValidateServiceName checks that name can be used as a single directory
// name directly under the working directory and spliced verbatim into the
// generated JSON, JavaScript and Markdown files. Names are limited to
// letters, digits, spaces, "-", "_" and ".".
// Returns E_INVALID_NAME describing the first problem found.
func ValidateServiceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidName(name, "service name must not be empty")
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return invalidName(name, "service name must not contain \"..\"")
	}
	if strings.ContainsAny(name, `/\`) {
		return invalidName(name, "service name must not contain path separators")
	}
	if strings.HasPrefix(name, "-") {
		return invalidName(name, "service name must not start with \"-\"")
	}
	if strings.ContainsAny(name, "{}") {
		return invalidName(name, "service name must not contain braces")
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return invalidName(name, "service name must not contain control characters")
	}
	if strings.TrimSpace(name) != name {
		return invalidName(name, "service name must not start or end with whitespace")
	}
	if i := strings.IndexFunc(name, notNameRune); i >= 0 {
		r, _ := utf8.DecodeRuneInString(name[i:])
		return invalidName(name, fmt.Sprintf("service name must not contain %q", r))
	}
	return nil
}

func notNameRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return false
	case r == '-', r == '_', r == '.', r == ' ':
		return false
	}
	return true
}

func invalidName(name, msg string) error {
	return errors.NewWithDetails(errors.EInvalidName, msg, map[string]string{"name": name})
}

// Title turns a service name into a display title: "order-events" -> "Order Events".
func Title(serviceName string) string {
	words := strings.FieldsFunc(serviceName, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
