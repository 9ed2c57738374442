package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"", ModeOff, false},
		{"LOCAL", ModeLocal, false},
		{" gcs ", ModeGCS, false},
		{"gcs_emulator", ModeGCSEmulator, false},
		{"s3", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q): err=%v wantErr=%v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q): got=%q want=%q", tt.raw, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code ConfigErrorCode
	}{
		{"off", Config{Mode: ModeOff}, ""},
		{"local without dir", Config{Mode: ModeLocal}, ConfigErrorMissingLocalDir},
		{"gcs without bucket", Config{Mode: ModeGCS}, ConfigErrorMissingBucket},
		{"emulator without host", Config{Mode: ModeGCSEmulator, Bucket: "b"}, ConfigErrorMissingEmulatorHost},
		{"emulator bad host", Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs"}, ConfigErrorInvalidEmulatorHost},
		{"emulator ok", Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "http://fake-gcs:4443"}, ""},
		{"unknown", Config{Mode: "s3"}, ConfigErrorInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate: unexpected error %v", err)
				}
				return
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Code != tt.code {
				t.Fatalf("Validate: got=%v want code=%s", err, tt.code)
			}
		})
	}
}

func TestCleanKey(t *testing.T) {
	if k, err := CleanKey("/snapshots/u/s.html.gz"); err != nil || k != "snapshots/u/s.html.gz" {
		t.Fatalf("CleanKey: got=%q err=%v", k, err)
	}
	for _, bad := range []string{"", "../etc/passwd", "a/../../b", "."} {
		if _, err := CleanKey(bad); err == nil {
			t.Fatalf("CleanKey(%q): expected error", bad)
		}
	}
}

func TestNewOffReturnsNilStore(t *testing.T) {
	s, err := New(context.Background(), logger.Nop(), Config{Mode: ModeOff})
	if err != nil || s != nil {
		t.Fatalf("New(off): store=%v err=%v", s, err)
	}
}

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, logger.Nop(), Config{Mode: ModeLocal, LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New(local): %v", err)
	}
	defer s.Close()

	if err := s.Put(ctx, "a/b.txt", strings.NewReader("hello"), ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Get(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "hello" {
		t.Fatalf("Get: got=%q", got)
	}

	if err := s.Delete(ctx, "a/b.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a/b.txt"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, err := s.Get(ctx, "a/b.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: got=%v want ErrNotFound", err)
	}
	if err := s.Put(ctx, "../escape", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("Put traversal: expected error")
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(logger.Nop(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	html := []byte(strings.Repeat("<div>snapshot</div>", 200))

	if err := PutCompressed(ctx, s, "snap.html.gz", html); err != nil {
		t.Fatalf("PutCompressed: %v", err)
	}
	rc, err := s.Get(ctx, "snap.html.gz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stored, _ := io.ReadAll(rc)
	_ = rc.Close()
	if len(stored) >= len(html) {
		t.Fatalf("expected compressed object smaller than input: %d >= %d", len(stored), len(html))
	}

	got, err := GetCompressed(ctx, s, "snap.html.gz")
	if err != nil {
		t.Fatalf("GetCompressed: %v", err)
	}
	if !bytes.Equal(got, html) {
		t.Fatalf("round trip mismatch")
	}
}
