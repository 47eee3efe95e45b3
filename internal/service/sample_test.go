package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/extract"
)

// newTestSampleService runs without OCR or AI: OCR text comes back empty and
// the style analyzer falls back to the default profile.
func newTestSampleService(t *testing.T) (*SampleService, *mockSampleRepo) {
	t.Helper()
	repo := newMockSampleRepo()
	logger := testLogger()
	svc := NewSampleService(repo, extract.New(nil, logger), nil, logger)
	return svc, repo
}

func TestUpload_Success(t *testing.T) {
	svc, _ := newTestSampleService(t)

	image := []byte{0x89, 'P', 'N', 'G'}
	sample, err := svc.Upload(context.Background(), "user-1", "my style", image)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if sample.ID == "" {
		t.Error("expected sample to have an ID")
	}
	if sample.SampleName != "my style" {
		t.Errorf("SampleName = %q, want %q", sample.SampleName, "my style")
	}
	// No OCR engine wired in: text is empty, style is the default profile.
	if sample.OCRText != "" {
		t.Errorf("OCRText = %q, want empty without an OCR engine", sample.OCRText)
	}
	if sample.StyleData.FontStyle == "" {
		t.Error("StyleData should be populated with defaults")
	}
	if sample.ImageBase64 != base64.StdEncoding.EncodeToString(image) {
		t.Error("ImageBase64 should hold the uploaded bytes")
	}
}

func TestUpload_DefaultName(t *testing.T) {
	svc, _ := newTestSampleService(t)

	sample, err := svc.Upload(context.Background(), "user-1", "", []byte("img"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if sample.SampleName != "My Handwriting" {
		t.Errorf("SampleName = %q, want default %q", sample.SampleName, "My Handwriting")
	}
}

func TestUpload_EmptyFile(t *testing.T) {
	svc, _ := newTestSampleService(t)

	_, err := svc.Upload(context.Background(), "user-1", "name", nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestSampleList_ScopedToUser(t *testing.T) {
	svc, _ := newTestSampleService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", "mine", []byte("img")); err != nil {
		t.Fatalf("setup: Upload() error = %v", err)
	}
	if _, err := svc.Upload(ctx, "user-2", "theirs", []byte("img")); err != nil {
		t.Fatalf("setup: Upload() error = %v", err)
	}

	samples, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("List() returned %d samples, want 1", len(samples))
	}
	if samples[0].SampleName != "mine" {
		t.Errorf("SampleName = %q, want %q", samples[0].SampleName, "mine")
	}
}
