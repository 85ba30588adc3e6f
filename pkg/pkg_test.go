package pkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "ecalc" {
		t.Errorf("Name = %q, want %q", Name, "ecalc")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("reading VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version() != want {
		t.Errorf("Version() = %q, want %q", Version(), want)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Author = %v, missing ardnew", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/local/bin/ecalc", "ecalc"},
		{"/tmp/__debug_bin1234", Name},
		{"/opt/.ecalc.sh", "ecalc"},
		{"/opt/...", Name},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := prefixOf(tt.path); got != tt.want {
				t.Errorf("prefixOf(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestError_Chain(t *testing.T) {
	err := ErrReadInput.Wrap(fs.ErrNotExist).Wrapf("file %q", "env.yaml")

	if got, want := err.Error(), `failed to read input: file does not exist: file "env.yaml"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false")
	}

	// Wrapping must not alias the sentinel's backing array.
	a := ErrReadInput.Wrapf("a")
	b := ErrReadInput.Wrapf("b")

	if a.Error() == b.Error() {
		t.Errorf("wrapped sentinels share state: %q", a.Error())
	}

	if len(ErrReadInput) != 1 {
		t.Errorf("len(ErrReadInput) = %d after wrapping, want 1", len(ErrReadInput))
	}
}

func TestMakeError_Flattens(t *testing.T) {
	inner := errors.New("inner")
	joined := errors.Join(inner, errors.New("other"))

	chain := MakeError(nil, joined)

	if len(chain) != 3 {
		t.Fatalf("len(chain) = %d, want 3: %v", len(chain), chain)
	}

	if chain[0] != inner {
		t.Errorf("chain[0] = %v, want inner", chain[0])
	}
}

func TestError_IsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("open: %w", ErrInvalidTimezone.Wrapf("zone %q", "Mars/Base"))

	if !errors.Is(wrapped, ErrInvalidTimezone) {
		t.Error("errors.Is(wrapped, ErrInvalidTimezone) = false")
	}

	if errors.Is(wrapped, ErrReadInput) {
		t.Error("errors.Is(wrapped, ErrReadInput) = true")
	}

	if errors.Is(ErrInvalidTimezone, ErrInvalidTimezone.Wrapf("longer")) {
		t.Error("sentinel matches a longer chain")
	}
}
