package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	redactOnce.Do(func() { redactionEnabled = true })

	kv := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"access_token", "abc",
		"OPENAI_API_KEY", "sk-test",
		"email", "a@example.com",
		"url", "https://example.com",
		"user_id", "1234",
		"scan_id", "5678",
		"dangling",
	})
	if len(kv) != 15 {
		t.Fatalf("expected odd trailing key to survive, got %d items", len(kv))
	}
	got := map[string]interface{}{}
	for i := 0; i+1 < len(kv); i += 2 {
		got[kv[i].(string)] = kv[i+1]
	}
	for _, k := range []string{"password", "access_token", "OPENAI_API_KEY"} {
		if got[k] != "[REDACTED]" {
			t.Fatalf("%s: expected redaction, got %v", k, got[k])
		}
	}
	if got["url"] != "https://example.com" {
		t.Fatalf("url: unexpected value %v", got["url"])
	}
	for _, k := range []string{"email", "user_id", "scan_id"} {
		s, _ := got[k].(string)
		if !strings.HasPrefix(s, "hash:") {
			t.Fatalf("%s: expected pseudonym, got %v", k, got[k])
		}
	}
	if got["user_id"] == got["scan_id"] {
		t.Fatalf("distinct ids should hash differently")
	}
}

func TestSanitizeNestedMap(t *testing.T) {
	redactOnce.Do(func() { redactionEnabled = true })

	v := sanitizeValue("request", map[string]interface{}{"cookie": "session=1", "path": "/scan/result"})
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	if m["cookie"] != "[REDACTED]" || m["path"] != "/scan/result" {
		t.Fatalf("unexpected nested sanitization: %v", m)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTYifQ.sig") {
		t.Fatalf("expected JWT-shaped string to match")
	}
	if looksLikeJWT("https://example.com/a.b") {
		t.Fatalf("did not expect URL to match")
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("discarded", "k", "v")
	l.With("service", "x").Warn("discarded")
}
