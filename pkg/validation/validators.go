package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

// Mirrors the site's /^[^\s@]+@[^\s@]+\.[^\s@]+$/ where \s is the
// JavaScript whitespace class (RE2's \s is ASCII only).
const jsSpace = `\t\n\x{0B}\f\r \x{A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var emailRegex = regexp.MustCompile(`^[^` + jsSpace + `@]+@[^` + jsSpace + `@]+\.[^` + jsSpace + `@]+$`)

// KnownSubject reports whether a subject code is selectable. Set by the
// caller so this package stays free of domain types.
type KnownSubject func(code string) bool

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate, known KnownSubject) {
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("support_email", SupportEmail)
	_ = v.RegisterValidation("min_trimmed", MinTrimmed)
	_ = v.RegisterValidation("support_subject", func(fl validator.FieldLevel) bool {
		return known != nil && known(fl.Field().String())
	})
}

// Trim removes leading and trailing whitespace as String.prototype.trim does
func Trim(s string) string {
	return strings.TrimFunc(s, isJSSpace)
}

// isJSSpace matches the same set as jsSpace: Zs plus the line terminators,
// tab, vertical tab, form feed and BOM. U+0085 is not in it.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// TrimmedLength counts UTF-16 code units of the trimmed value, as the
// site's message.trim().length does
func TrimmedLength(s string) int {
	return len(utf16.Encode([]rune(Trim(s))))
}

// IsEmail checks the untrimmed value against the site's email pattern
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// NotBlank fails for empty or whitespace-only strings
func NotBlank(fl validator.FieldLevel) bool {
	return Trim(fl.Field().String()) != ""
}

// SupportEmail requires a non-blank value matching the email pattern
func SupportEmail(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	return Trim(val) != "" && IsEmail(val)
}

// MinTrimmed validates a minimum character count after trimming, e.g. min_trimmed=10
func MinTrimmed(fl validator.FieldLevel) bool {
	minLen, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return TrimmedLength(fl.Field().String()) >= minLen
}
