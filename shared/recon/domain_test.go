package recon_test

import (
	"testing"

	"github.com/caio-ishikawa/bountyboard/shared/recon"
)

func TestNormalizeDomain(t *testing.T) {
	var inputs = []struct {
		in       string
		expected string
	}{
		{"example.com", "example.com"},
		{"  Example.COM ", "example.com"},
		{"HTTPS://Api.Example.com/login?next=/", "api.example.com"},
		{"http://shop.example.co.uk:8443/", "shop.example.co.uk"},
		{"10.0.0.12", "10.0.0.12"},
	}

	for _, in := range inputs {
		ret, err := recon.NormalizeDomain(in.in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %s", in.in, err)
		}
		if ret != in.expected {
			t.Fatalf("%q normalised to %q, expected %q", in.in, ret, in.expected)
		}
	}

	if _, err := recon.NormalizeDomain("   "); err == nil {
		t.Fatalf("expected empty domain to be rejected")
	}
}

func TestTargetURL(t *testing.T) {
	if u := recon.TargetURL("example.com"); u != "https://example.com" {
		t.Fatalf("unexpected url %s", u)
	}
	if u := recon.TargetURL("http://example.com"); u != "http://example.com" {
		t.Fatalf("unexpected url %s", u)
	}
}

func TestTechStack(t *testing.T) {
	if s := recon.TechStack([]string{"nginx", "react"}); s != "nginx, react" {
		t.Fatalf("unexpected tech stack %q", s)
	}
}

func TestRegistrableDomain(t *testing.T) {
	var inputs = []struct {
		in       string
		expected string
	}{
		{"api.example.com", "example.com"},
		{"shop.example.co.uk", "example.co.uk"},
		{"10.0.0.12", ""},
	}

	for _, in := range inputs {
		if ret := recon.RegistrableDomain(in.in); ret != in.expected {
			t.Fatalf("%q: got %q, expected %q", in.in, ret, in.expected)
		}
	}
}
