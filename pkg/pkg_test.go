package pkg

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "demonstrate"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	expected := "Declarative test suite compiler"
	if Description != expected {
		t.Errorf("Expected Description to be %q, got %q", expected, Description)
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file, so it should not be empty.
	if strings.TrimSpace(Version) == "" {
		t.Error("Expected Version to be non-empty")
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Error("Expected Author to have at least one entry")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestMakeError(t *testing.T) {
	inner := errors.New("inner")
	outer := ErrParse.Wrap(inner)

	if !errors.Is(outer, inner) {
		t.Error("Expected wrapped error to match inner error via errors.Is")
	}

	chain := UnwrapErrors(outer)
	if len(chain) == 0 {
		t.Fatal("Expected non-empty error chain")
	}

	if !slices.ContainsFunc(chain, func(err error) bool {
		return errors.Is(err, inner)
	}) {
		t.Error("Expected chain to contain the inner error")
	}
}

func TestErrorString(t *testing.T) {
	e := MakeErrorf("first").Wrapf("second")

	got := e.Error()
	want := "first: second"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
