package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
)

func createTestSample(t *testing.T, db *DB, userID, name string) *model.HandwritingSample {
	t.Helper()
	sample := &model.HandwritingSample{
		UserID:     userID,
		SampleName: name,
		OCRText:    "the quick brown fox",
		StyleData: model.StyleProfile{
			FontStyle: "cursive",
			Slant:     "right",
			Size:      "medium",
			Spacing:   "normal",
			Pressure:  "light",
		},
		ImageBase64: "aGVsbG8=",
	}
	if err := db.CreateSample(context.Background(), sample); err != nil {
		t.Fatalf("failed to create test sample: %v", err)
	}
	return sample
}

func TestCreateSample_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "sample@example.com")

	created := createTestSample(t, db, user.ID, "my cursive")
	if created.ID == "" {
		t.Fatal("CreateSample() did not set sample.ID")
	}

	found, err := db.GetSample(context.Background(), user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetSample() error = %v", err)
	}
	if found.SampleName != "my cursive" {
		t.Errorf("SampleName = %q, want %q", found.SampleName, "my cursive")
	}
	if found.StyleData.FontStyle != "cursive" {
		t.Errorf("StyleData.FontStyle = %q, want %q", found.StyleData.FontStyle, "cursive")
	}
	if found.OCRText != "the quick brown fox" {
		t.Errorf("OCRText = %q, want %q", found.OCRText, "the quick brown fox")
	}
}

func TestGetSample_OtherUsersSampleIsNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	sample := createTestSample(t, db, owner.ID, "private")

	_, err := db.GetSample(context.Background(), other.ID, sample.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSample() by non-owner: error = %v, want ErrNotFound", err)
	}
}

func TestListSamples_ScopedAndNewestFirst(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := createTestSample(t, db, alice.ID, "first")
	second := createTestSample(t, db, alice.ID, "second")
	createTestSample(t, db, bob.ID, "bobs")

	samples, err := db.ListSamples(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListSamples() error = %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("ListSamples() returned %d samples, want 2", len(samples))
	}
	if samples[0].ID != second.ID || samples[1].ID != first.ID {
		t.Errorf("ListSamples() order = [%s, %s], want newest first [%s, %s]",
			samples[0].ID, samples[1].ID, second.ID, first.ID)
	}
}

func TestListSamples_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "empty@example.com")

	samples, err := db.ListSamples(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSamples() error = %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("ListSamples() returned %d samples, want 0", len(samples))
	}
}
