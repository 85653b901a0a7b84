package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	raw := "Savings Account\nA high-yield savings account.\n" + Separator +
		"\nCredit Card\nA rewards credit card.\n" + Separator +
		"\n\n" + Separator +
		"\nHome Loan\nA fixed-rate home loan.\n"

	entries, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Parse() returned %d entries, want 3", len(entries))
	}

	wantIDs := []string{"savings-account", "credit-card", "home-loan"}
	for i, want := range wantIDs {
		if entries[i].ID != want {
			t.Errorf("entry %d has id %q, want %q", i, entries[i].ID, want)
		}
	}

	if entries[0].Title() != "Savings Account" {
		t.Errorf("entry 0 title = %q, want %q", entries[0].Title(), "Savings Account")
	}
}

func TestParseDuplicateID(t *testing.T) {
	raw := "Credit Card\nfirst\n" + Separator + "\nCredit Card\nsecond\n"
	if _, err := Parse(raw); err == nil {
		t.Fatal("Parse() with duplicate titles should fail")
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse("   \n  " + Separator + "  \n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Parse() of blank input returned %d entries, want 0", len(entries))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.txt")
	content := "Savings Account\nDescription one.\n" + Separator + "\nCredit Card\nDescription two.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(entries))
	}

	if _, err := Load(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Parse("Savings Account\nA savings account.\n")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("Savings Account\nA savings account.\n")
	if err != nil {
		t.Fatal(err)
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical content should produce identical fingerprints")
	}

	c, err := Parse("Savings Account\nAn updated savings account.\n")
	if err != nil {
		t.Fatal(err)
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("changed content should change the fingerprint")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Savings Account", "savings-account"},
		{"  Credit   Card!  ", "credit-card"},
		{"Auto-Loan (72 months)", "auto-loan-72-months"},
		{"UPPER", "upper"},
		{"!!!", ""},
	}

	for _, test := range tests {
		if got := Slug(test.in); got != test.want {
			t.Errorf("Slug(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
