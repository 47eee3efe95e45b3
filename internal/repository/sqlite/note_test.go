package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

func createTestNote(t *testing.T, db *DB, userID, title, subject string) *model.Note {
	t.Helper()
	note := &model.Note{
		UserID:           userID,
		Title:            title,
		OriginalContent:  "raw text",
		ProcessedContent: "processed " + title,
		StyleApplied:     "default",
		Subject:          subject,
		Tags:             []string{"test"},
	}
	if err := db.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("failed to create test note: %v", err)
	}
	return note
}

func TestCreateNote_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "notes@example.com")

	created := createTestNote(t, db, user.ID, "Photosynthesis", "Biology")
	if created.ID == "" {
		t.Fatal("CreateNote() did not set note.ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("CreateNote() did not set timestamps")
	}

	found, err := db.GetNote(context.Background(), user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if found.Title != "Photosynthesis" {
		t.Errorf("Title = %q, want %q", found.Title, "Photosynthesis")
	}
	if found.Subject != "Biology" {
		t.Errorf("Subject = %q, want %q", found.Subject, "Biology")
	}
	if len(found.Tags) != 1 || found.Tags[0] != "test" {
		t.Errorf("Tags = %v, want [test]", found.Tags)
	}
	if found.IsFavorite {
		t.Error("IsFavorite should default to false")
	}
}

func TestCreateNote_NilTagsBecomeEmptySlice(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "niltags@example.com")

	note := &model.Note{UserID: user.ID, Title: "untagged", ProcessedContent: "x", Subject: "General"}
	if err := db.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	found, err := db.GetNote(context.Background(), user.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if found.Tags == nil {
		t.Error("Tags should decode as an empty slice, not nil")
	}
}

func TestGetNote_OtherUsersNoteIsNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	note := createTestNote(t, db, owner.ID, "secret", "General")

	_, err := db.GetNote(context.Background(), other.ID, note.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetNote() by non-owner: error = %v, want ErrNotFound", err)
	}
}

func TestListNotes_PaginationDoesNotOverlap(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "pages@example.com")

	for i := 0; i < 5; i++ {
		createTestNote(t, db, user.ID, fmt.Sprintf("note %d", i), "General")
	}

	page1, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListNotes() page 1 error = %v", err)
	}
	page2, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListNotes() page 2 error = %v", err)
	}

	if len(page1.Items) != 2 || len(page2.Items) != 2 {
		t.Fatalf("page sizes = %d, %d, want 2, 2", len(page1.Items), len(page2.Items))
	}

	seen := map[string]bool{}
	for _, n := range page1.Items {
		seen[n.ID] = true
	}
	for _, n := range page2.Items {
		if seen[n.ID] {
			t.Errorf("note %s appears on both pages", n.ID)
		}
	}

	if page1.Total != 5 {
		t.Errorf("Total = %d, want 5", page1.Total)
	}
	if page1.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3 (ceil(5/2))", page1.PageCount)
	}
}

func TestListNotes_PastTheEndIsEmptyNotError(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "end@example.com")
	createTestNote(t, db, user.ID, "only one", "General")

	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Page: 9, PageSize: 10})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("got %d items past the end, want 0", len(page.Items))
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestListNotes_ClampsBadPageValues(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "clamp@example.com")
	createTestNote(t, db, user.ID, "a note", "General")

	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Page: -3, PageSize: 0})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want clamped to 1", page.Page)
	}
	if len(page.Items) != 1 {
		t.Errorf("got %d items, want 1", len(page.Items))
	}
}

func TestListNotes_SubjectFilter(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "subject@example.com")
	createTestNote(t, db, user.ID, "cells", "Biology")
	createTestNote(t, db, user.ID, "forces", "Physics")

	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Subject: "Biology"})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("Total = %d, want 1", page.Total)
	}
	if page.Items[0].Subject != "Biology" {
		t.Errorf("Subject = %q, want Biology", page.Items[0].Subject)
	}

	// "All" is the client's way of saying no filter.
	all, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Subject: "All"})
	if err != nil {
		t.Fatalf("ListNotes() all error = %v", err)
	}
	if all.Total != 2 {
		t.Errorf("Total with subject=All = %d, want 2", all.Total)
	}
}

func TestListNotes_SearchCountsMatchItems(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "search@example.com")
	createTestNote(t, db, user.ID, "mitochondria", "Biology")
	createTestNote(t, db, user.ID, "unrelated", "Biology")

	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Search: "mitochondria"})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}
	// Total must reflect the same filter as the items, not the whole set.
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestListNotes_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice2@example.com")
	bob := createTestUser(t, db, "bob2@example.com")
	createTestNote(t, db, alice.ID, "mine", "General")
	createTestNote(t, db, bob.ID, "his", "General")

	page, err := db.ListNotes(context.Background(), alice.ID, repository.NoteFilter{})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestListNotes_PreviewTruncated(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "preview@example.com")

	long := ""
	for i := 0; i < 50; i++ {
		long += "0123456789"
	}
	note := &model.Note{UserID: user.ID, Title: "long", ProcessedContent: long, Subject: "General"}
	if err := db.CreateNote(context.Background(), note); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if got := len(page.Items[0].Preview); got != notePreviewLen {
		t.Errorf("Preview length = %d, want %d", got, notePreviewLen)
	}
}

func TestUpdateNote_PartialPatch(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "patch@example.com")
	note := createTestNote(t, db, user.ID, "before", "General")

	fav := true
	affected, err := db.UpdateNote(context.Background(), user.ID, note.ID, repository.NoteUpdate{IsFavorite: &fav})
	if err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	found, err := db.GetNote(context.Background(), user.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if !found.IsFavorite {
		t.Error("IsFavorite should be true after patch")
	}
	// Untouched fields survive the patch.
	if found.Title != "before" {
		t.Errorf("Title = %q, want untouched %q", found.Title, "before")
	}
	if len(found.Tags) != 1 || found.Tags[0] != "test" {
		t.Errorf("Tags = %v, want untouched [test]", found.Tags)
	}
	if !found.UpdatedAt.After(note.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want later than %v", found.UpdatedAt, note.UpdatedAt)
	}
}

func TestUpdateNote_UnownedAffectsZeroRows(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner2@example.com")
	other := createTestUser(t, db, "other2@example.com")
	note := createTestNote(t, db, owner.ID, "keep out", "General")

	title := "hijacked"
	affected, err := db.UpdateNote(context.Background(), other.ID, note.ID, repository.NoteUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0 for unowned note", affected)
	}

	found, err := db.GetNote(context.Background(), owner.ID, note.ID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if found.Title != "keep out" {
		t.Errorf("Title = %q, want unchanged %q", found.Title, "keep out")
	}
}

func TestDeleteNote(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "del@example.com")
	note := createTestNote(t, db, user.ID, "doomed", "General")

	affected, err := db.DeleteNote(context.Background(), user.ID, note.ID)
	if err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	_, err = db.GetNote(context.Background(), user.ID, note.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetNote() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote_UnownedAffectsZeroRows(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner3@example.com")
	other := createTestUser(t, db, "other3@example.com")
	note := createTestNote(t, db, owner.ID, "still here", "General")

	affected, err := db.DeleteNote(context.Background(), other.ID, note.ID)
	if err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0 for unowned note", affected)
	}

	if _, err := db.GetNote(context.Background(), owner.ID, note.ID); err != nil {
		t.Errorf("owner's note should survive: %v", err)
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "stats@example.com")

	createTestNote(t, db, user.ID, "a", "Biology")
	createTestNote(t, db, user.ID, "b", "Biology")
	createTestNote(t, db, user.ID, "c", "Physics")
	createTestSample(t, db, user.ID, "sample")

	fav := true
	page, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{Search: "a"})
	if err != nil || len(page.Items) == 0 {
		t.Fatalf("listing note to favorite: %v", err)
	}
	if _, err := db.UpdateNote(context.Background(), user.ID, page.Items[0].ID, repository.NoteUpdate{IsFavorite: &fav}); err != nil {
		t.Fatalf("favoriting note: %v", err)
	}

	stats, err := db.Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalNotes != 3 {
		t.Errorf("TotalNotes = %d, want 3", stats.TotalNotes)
	}
	if stats.Favorites != 1 {
		t.Errorf("Favorites = %d, want 1", stats.Favorites)
	}
	if stats.Samples != 1 {
		t.Errorf("Samples = %d, want 1", stats.Samples)
	}
	if len(stats.TopSubjects) != 2 {
		t.Fatalf("TopSubjects has %d entries, want 2", len(stats.TopSubjects))
	}
	if stats.TopSubjects[0].Subject != "Biology" || stats.TopSubjects[0].Count != 2 {
		t.Errorf("TopSubjects[0] = %+v, want {Biology 2}", stats.TopSubjects[0])
	}
}

func TestStats_EmptyUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "nothing@example.com")

	stats, err := db.Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalNotes != 0 || stats.Favorites != 0 || stats.Samples != 0 {
		t.Errorf("Stats for empty user = %+v, want zeros", stats)
	}
	if stats.TopSubjects == nil {
		t.Error("TopSubjects should be an empty slice, not nil")
	}
}

// Same wall-clock second across quick successive inserts must not make
// listing order flap between requests.
func TestListNotes_StableOrderForEqualTimestamps(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "order@example.com")

	for i := 0; i < 4; i++ {
		createTestNote(t, db, user.ID, fmt.Sprintf("n%d", i), "General")
	}

	first, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := db.ListNotes(context.Background(), user.ID, repository.NoteFilter{})
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}

	for i := range first.Items {
		if first.Items[i].ID != second.Items[i].ID {
			t.Fatalf("ordering changed between identical queries at index %d", i)
		}
	}
}
