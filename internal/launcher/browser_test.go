package launcher

import (
	"errors"
	"testing"
	"time"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/logging"
)

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for launcher")
		return nil
	}
}

func TestOpenPassesURL(t *testing.T) {
	logging.InitDefault()

	var got string
	l := NewWithOpener(func(url string) error {
		got = url
		return nil
	})

	if err := wait(t, l.Open("http://localhost:8000/index.html")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "http://localhost:8000/index.html" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestOpenFailureIsReported(t *testing.T) {
	logging.InitDefault()

	boom := errors.New("xdg-open: not found")
	l := NewWithOpener(func(string) error { return boom })

	if err := wait(t, l.Open("http://localhost:1/")); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}
