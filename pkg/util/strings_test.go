package util

import "testing"

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"user@mail.com": "user_mail_com",
		"plain123":      "plain123",
		"a b+c":         "a_b_c",
		"":              "",
	}
	for in, want := range cases {
		if got := SanitizeKey(in); got != want {
			t.Errorf("SanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 1); got != 42 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
}
