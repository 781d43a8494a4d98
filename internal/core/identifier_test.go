package core

import (
	"errors"
	"testing"
)

func enrolled(ids ...string) []*Member {
	out := make([]*Member, len(ids))
	for i, id := range ids {
		out[i] = &Member{identifier: id}
	}
	return out
}

func TestGenerateIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		last     string
		existing []*Member
		want     string
	}{
		{"plain", "Ann", "Lee", nil, "annlee@laEmpresa.com"},
		{"truncates", "Valentina", "Suarez", nil, "valsua@laEmpresa.com"},
		{"short parts", "Mia", "Z", nil, "miaz@laEmpresa.com"},
		{"lowercases", "ANA", "LOPEZ", nil, "analop@laEmpresa.com"},
		{"accented", "Sofía", "Ñúñez", nil, "sofñúñ@laEmpresa.com"},
		{"untrimmed input", " Ann", "Lee ", nil, " anlee@laEmpresa.com"},
		{"first collision", "Ann", "Lee", enrolled("annlee@laEmpresa.com"), "annlee1@laEmpresa.com"},
		{"second collision", "Ann", "Lee", enrolled("annlee@laEmpresa.com", "annlee1@laEmpresa.com"), "annlee2@laEmpresa.com"},
		{"gap is reused", "Ann", "Lee", enrolled("annlee@laEmpresa.com", "annlee2@laEmpresa.com"), "annlee1@laEmpresa.com"},
		{"unrelated members", "Ann", "Lee", enrolled("tomli@laEmpresa.com"), "annlee@laEmpresa.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateIdentifier(tt.first, tt.last, tt.existing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GenerateIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateIdentifierIsPureAndUnique(t *testing.T) {
	existing := enrolled("annlee@laEmpresa.com", "annlee1@laEmpresa.com", "leoann@laEmpresa.com")
	first, err := GenerateIdentifier("Ann", "Lee", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := GenerateIdentifier("Ann", "Lee", existing)
	if first != second {
		t.Fatalf("not deterministic: %q vs %q", first, second)
	}
	for _, m := range existing {
		if m.Identifier() == first {
			t.Fatalf("generated identifier %q collides", first)
		}
	}
}

func TestGenerateIdentifierRejectsEmptyParts(t *testing.T) {
	for _, tc := range [][2]string{{"", "Lee"}, {"Ann", ""}, {"  ", "Lee"}} {
		if _, err := GenerateIdentifier(tc[0], tc[1], nil); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q %q: expected ErrInvalidArgument, got %v", tc[0], tc[1], err)
		}
	}
}

func TestEnrollUsesDomain(t *testing.T) {
	m := &Member{Name: "Ann", Surname: "Lee"}
	if err := m.Enroll(nil, "example.org"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Identifier() != "annlee@example.org" {
		t.Fatalf("got %q", m.Identifier())
	}
}
