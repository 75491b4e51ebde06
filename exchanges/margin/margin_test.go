package margin

import (
	"errors"
	"testing"
)

func TestValid(t *testing.T) {
	if Unset.Valid() {
		t.Fatal("unset is not a valid margin type")
	}
	if !Isolated.Valid() || !Multi.Valid() {
		t.Fatal("expected valid margin types")
	}
	if Type(200).Valid() {
		t.Fatal("expected invalid margin type")
	}
}

func TestString(t *testing.T) {
	if Isolated.String() != "isolated" {
		t.Fatalf("unexpected string %q", Isolated.String())
	}
	if Multi.String() != "multi" {
		t.Fatalf("unexpected string %q", Multi.String())
	}
	if Isolated.Upper() != "ISOLATED" {
		t.Fatalf("unexpected string %q", Isolated.Upper())
	}
	if Unset.String() != "" {
		t.Fatalf("unexpected string %q", Unset.String())
	}
}

func TestIsValidString(t *testing.T) {
	for _, s := range []string{"isolated", "cross", "crossed", "multi", "", "ISOLATED"} {
		if !IsValidString(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if IsValidString("lolated") {
		t.Fatal("expected invalid string")
	}
}

func TestStringToMarginType(t *testing.T) {
	cases := []struct {
		input    string
		expected Type
	}{
		{"isolated", Isolated},
		{"cross", Multi},
		{"crossed", Multi},
		{"multi", Multi},
		{"", Unset},
	}
	for _, tc := range cases {
		m, err := StringToMarginType(tc.input)
		if err != nil {
			t.Fatalf("%q: %v", tc.input, err)
		}
		if m != tc.expected {
			t.Fatalf("%q: got %v", tc.input, m)
		}
	}

	_, err := StringToMarginType("hello")
	if !errors.Is(err, ErrInvalidMarginType) {
		t.Fatalf("expected ErrInvalidMarginType, got %v", err)
	}
}
