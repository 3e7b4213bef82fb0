package mail

import (
	"strings"
	"testing"
)

func TestRenderOTPMail(t *testing.T) {
	html, text, err := renderOTPMail("alice", "Use the following OTP.", "123456")
	if err != nil {
		t.Fatalf("renderOTPMail error: %v", err)
	}
	for _, want := range []string{"alice", "123456", "Use the following OTP."} {
		if !strings.Contains(html, want) {
			t.Fatalf("html body missing %q:\n%s", want, html)
		}
	}
	if text != "Your OTP is: 123456" {
		t.Fatalf("unexpected text body: %q", text)
	}
}

func TestRenderOTPMail_EscapesUsername(t *testing.T) {
	html, _, err := renderOTPMail("<script>x</script>", "intro", "123456")
	if err != nil {
		t.Fatalf("renderOTPMail error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("username must be HTML-escaped")
	}
}
