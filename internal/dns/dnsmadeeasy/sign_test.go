package dnsmadeeasy

import "testing"

func TestSign(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		secret    string
		want      string
	}{
		{"rfc2202 style vector", "The quick brown fox jumps over the lazy dog", "key", "de7c9b85b8b78aa6bc8a7a36f70a90701c9db4d9"},
		{"request date", "Thu, 15 Oct 2026 08:30:00 GMT", "secret456", "3c94eab3a75c32b58f7d372017142f6e59346ab3"},
		{"empty secret still signs", "x", "", "6244e66451a1c8695db9731ce2c4fd5de25ccf87"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sign(tt.timestamp, tt.secret); got != tt.want {
				t.Errorf("Sign(%q, %q) = %q, want %q", tt.timestamp, tt.secret, got, tt.want)
			}
		})
	}
}

func TestSign_Deterministic(t *testing.T) {
	const ts = "Thu, 15 Oct 2026 08:30:00 GMT"
	if Sign(ts, "secret") != Sign(ts, "secret") {
		t.Fatal("expected identical signatures for identical input")
	}
}

func TestSign_InputSensitivity(t *testing.T) {
	base := Sign("Thu, 15 Oct 2026 08:30:00 GMT", "secret")
	if Sign("Thu, 15 Oct 2026 08:30:01 GMT", "secret") == base {
		t.Error("expected a different signature when the timestamp changes")
	}
	if Sign("Thu, 15 Oct 2026 08:30:00 GMT", "secret2") == base {
		t.Error("expected a different signature when the secret changes")
	}
}
