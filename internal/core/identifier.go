package core

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultIdentifierDomain is appended to every generated identifier.
const DefaultIdentifierDomain = "laEmpresa.com"

const identifierPrefixLength = 3

// GenerateIdentifier derives a login identifier from the first three letters
// of name and surname as given, lowercased. A numeric suffix starting at 1 is added
// when the plain form already belongs to one of the existing members.
//
//	GenerateIdentifier("Ann", "Lee", nil)      -> "annlee@laEmpresa.com"
//	GenerateIdentifier("Ann", "Lee", [annlee]) -> "annlee1@laEmpresa.com"
func GenerateIdentifier(name, surname string, existing []*Member) (string, error) {
	return generateIdentifier(name, surname, existing, DefaultIdentifierDomain)
}

func generateIdentifier(name, surname string, existing []*Member, domain string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if strings.TrimSpace(surname) == "" {
		return "", fmt.Errorf("%w: empty surname", ErrInvalidArgument)
	}
	if domain == "" {
		domain = DefaultIdentifierDomain
	}

	taken := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		if m != nil {
			taken[m.identifier] = struct{}{}
		}
	}

	base := identifierPrefix(name) + identifierPrefix(surname)
	candidate := base + "@" + domain
	for n := 1; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(n) + "@" + domain
	}
}

func identifierPrefix(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) > identifierPrefixLength {
		r = r[:identifierPrefixLength]
	}
	return string(r)
}
