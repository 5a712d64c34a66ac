package client

import (
	"bytes"
	"io"
	"testing"
)

func TestProgressSource(t *testing.T) {
	t.Run("reports bytes read to the sink", func(t *testing.T) {
		var sink bytes.Buffer
		src := NewProgressSource(newFakeSource("0123456789"), &sink)

		data, err := io.ReadAll(src)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "0123456789" {
			t.Errorf("read corrupted data %q", data)
		}
		if sink.Len() != 10 {
			t.Errorf("expected 10 bytes reported, got %d", sink.Len())
		}
	})

	t.Run("seek and close delegate", func(t *testing.T) {
		inner := newFakeSource("abc")
		src := NewProgressSource(inner, io.Discard)

		if _, err := io.ReadAll(src); err != nil {
			t.Fatal(err)
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			t.Fatalf("seek failed: %v", err)
		}
		buf := make([]byte, 1)
		if _, err := src.Read(buf); err != nil || buf[0] != 'a' {
			t.Errorf("expected rewound read of 'a', got %q err %v", buf, err)
		}

		if err := src.Close(); err != nil {
			t.Fatal(err)
		}
		if !inner.closed {
			t.Error("close should delegate to the wrapped source")
		}
	})

	t.Run("name passes through for multipart inference", func(t *testing.T) {
		named := &namedFakeSource{newFakeSource("x"), "/tmp/a.png"}
		src := NewProgressSource(named, io.Discard)

		_, files := normalizeParams(map[string]interface{}{"file": src})
		if len(files) != 1 {
			t.Fatalf("expected 1 file part, got %d", len(files))
		}
		if files[0].filename != "a.png" || files[0].mimeType != "image/png" {
			t.Errorf("name not passed through: %+v", files[0])
		}
	})
}
