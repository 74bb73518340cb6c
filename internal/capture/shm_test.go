package capture

import (
	"errors"
	"image"
	"testing"
)

func TestNewBackends(t *testing.T) {
	svc, err := New("SHM", nil)
	if err != nil {
		t.Fatalf("shm: %v", err)
	}
	if svc.Name() != BackendSHM || svc.fallback != nil {
		t.Fatalf("unexpected shm service %+v", svc)
	}
	if _, err := New("x11", nil); err == nil {
		t.Fatalf("x11 without a connection should fail")
	}
	if _, err := New("vnc", nil); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestSHMBackendNormalizesOrigin(t *testing.T) {
	prev := shmCaptureRect
	t.Cleanup(func() { shmCaptureRect = prev })

	shmCaptureRect = func(r image.Rectangle) (*image.RGBA, error) {
		img := image.NewRGBA(r)
		img.Pix[0] = 0xAB
		return img, nil
	}
	img, err := shmBackend{}.CaptureRect(image.Rect(40, 30, 50, 35))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if img.Pix[0] != 0xAB {
		t.Fatalf("pixels not copied")
	}

	sentinel := errors.New("no shm")
	shmCaptureRect = func(image.Rectangle) (*image.RGBA, error) { return nil, sentinel }
	if _, err := (shmBackend{}).CaptureRect(image.Rect(0, 0, 1, 1)); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
