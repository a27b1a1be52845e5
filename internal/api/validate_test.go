package api

import (
	"strings"
	"testing"
)

// TestValidDomainName exercises the accepted and rejected domain origin forms.
func TestValidDomainName(t *testing.T) {
	t.Parallel()

	valid := []string{
		"example.com",
		"sub.example.com",
		"sub.example.com:8443",
		"localhost",
		"localhost:3000",
		"192.168.1.1",
		"192.168.1.1:8080",
		"my-app.example.co",
	}
	for _, name := range valid {
		if !ValidDomainName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}

	invalid := []string{
		"",
		"not a domain",
		"example",
		".example.com",
		"example..com",
		"-bad.example.com",
		"http://example.com",
		"example.com/path",
	}
	for _, name := range invalid {
		if ValidDomainName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

// TestValidDuration verifies the accepted duration enum.
func TestValidDuration(t *testing.T) {
	t.Parallel()

	for _, days := range []int{7, 30, 60, 90, 180, 365} {
		if !ValidDuration(days) {
			t.Errorf("expected %d days to be valid", days)
		}
	}

	for _, days := range []int{0, -7, 1, 14, 100, 366} {
		if ValidDuration(days) {
			t.Errorf("expected %d days to be invalid", days)
		}
	}
}

// TestValidateKeyName verifies the name rules.
func TestValidateKeyName(t *testing.T) {
	t.Parallel()

	if msg := validateKeyName("prod-sensor-key"); msg != "" {
		t.Errorf("expected valid name, got %q", msg)
	}

	if msg := validateKeyName(""); msg == "" {
		t.Errorf("expected empty name to be rejected")
	}

	if msg := validateKeyName("   "); msg == "" {
		t.Errorf("expected whitespace name to be rejected")
	}

	if msg := validateKeyName(strings.Repeat("x", 101)); msg == "" {
		t.Errorf("expected over-long name to be rejected")
	}

	if msg := validateKeyName(strings.Repeat("x", 100)); msg != "" {
		t.Errorf("expected 100-char name to be accepted, got %q", msg)
	}
}

// TestValidateDomainNames verifies trimming, ordering, and uniqueness rules.
func TestValidateDomainNames(t *testing.T) {
	t.Parallel()

	// Blanks are filtered, entries trimmed
	cleaned, msg := validateDomainNames([]string{" example.com ", "", "  "})
	if msg != "" {
		t.Fatalf("expected valid set, got %q", msg)
	}
	if len(cleaned) != 1 || cleaned[0] != "example.com" {
		t.Errorf("expected [example.com], got %v", cleaned)
	}

	// Empty after filtering
	_, msg = validateDomainNames([]string{"", "   "})
	if msg == "" {
		t.Errorf("expected empty set to be rejected")
	}

	// Invalid format reported before duplicates
	_, msg = validateDomainNames([]string{"not a domain", "example.com", "example.com"})
	if !strings.Contains(msg, "Invalid domain name") {
		t.Errorf("expected invalid-format message, got %q", msg)
	}

	// Duplicates are case-insensitive
	_, msg = validateDomainNames([]string{"Example.com", "example.com"})
	if !strings.Contains(msg, "Duplicate domain name") {
		t.Errorf("expected duplicate message, got %q", msg)
	}
}
