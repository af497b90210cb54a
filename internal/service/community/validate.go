package community

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

const (
	displayNameMin = 3
	displayNameMax = 20
)

var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

func validateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < displayNameMin || n > displayNameMax {
		return svcErr.Validation("display name must be 3-20 characters")
	}
	if !displayNamePattern.MatchString(name) {
		return svcErr.Validation("display name may only contain letters, digits and spaces")
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return svcErr.Validation("url must be an absolute http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return svcErr.Validation("url must be an absolute http(s) URL")
	}
	return nil
}

// validateNumericFields checks the optional descriptive numbers: each must
// parse as a float within its plausible range when present. Empty values are
// fine; the fields are stored as free-form text either way.
func validateNumericFields(stars, cs, ar, od, bpm string) error {
	checks := []struct {
		name     string
		value    string
		min, max float64
	}{
		{"stars", stars, 0, 999},
		{"cs", cs, 0, 11},
		{"ar", ar, 0, 11},
		{"od", od, 0, 11},
		{"bpm", bpm, 0, 10000},
	}
	for _, c := range checks {
		v := strings.TrimSpace(c.value)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < c.min || f > c.max {
			return svcErr.Validation(c.name + " must be a number between " +
				strconv.FormatFloat(c.min, 'f', -1, 64) + " and " +
				strconv.FormatFloat(c.max, 'f', -1, 64))
		}
	}
	return nil
}
