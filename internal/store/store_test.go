package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

func openStore(t *testing.T) *TourStore {
	t.Helper()
	s, err := Open(context.Background(), NewMemoryPersistence())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestOpenSeedsDemoData(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tours, err := s.ListTours(ctx)
	if err != nil {
		t.Fatalf("list tours: %v", err)
	}
	if len(tours) != 1 {
		t.Fatalf("expected 1 seeded tour, got %d", len(tours))
	}
	if tours[0].Name != "The Sherlock Holmes Institute Final Exam" {
		t.Errorf("unexpected seeded tour name %q", tours[0].Name)
	}
	if !tours[0].IsActive {
		t.Error("seeded tour should be active")
	}

	stops, err := s.ListStops(ctx, tours[0].ID)
	if err != nil {
		t.Fatalf("list stops: %v", err)
	}
	if len(stops) != 5 {
		t.Fatalf("expected 5 seeded stops, got %d", len(stops))
	}
	for i, st := range stops {
		if st.StopNumber != i+1 {
			t.Errorf("stop %d has number %d", i, st.StopNumber)
		}
	}
	if stops[0].Password != "1212" {
		t.Errorf("first stop password = %q, want 1212", stops[0].Password)
	}
}

func TestOpenKeepsPersistedData(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersistence()

	s, err := Open(ctx, p)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	created, err := s.CreateTour(ctx, TourDraft{Name: "Night Walk", City: "Tampa"})
	if err != nil {
		t.Fatalf("create tour: %v", err)
	}

	// A second open over the same backend must see the new tour, not a
	// fresh reseed.
	s2, err := Open(ctx, p)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if _, err := s2.GetTour(ctx, created.ID); err != nil {
		t.Errorf("tour lost across reopen: %v", err)
	}
}

func TestOpenMigratesOldVersion(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersistence()

	s, err := Open(ctx, p)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	created, err := s.CreateTour(ctx, TourDraft{Name: "Keep Me"})
	if err != nil {
		t.Fatalf("create tour: %v", err)
	}

	// Simulate data written by an older app version: stale marker, and a
	// stop predating the gameplay defaults.
	old, _ := json.Marshal("2")
	if err := p.Save(ctx, docVersion, old); err != nil {
		t.Fatalf("save version: %v", err)
	}
	stopsJSON, _ := json.Marshal([]tourquest.Stop{{
		ID: "old-stop", TourID: created.ID, StopNumber: 1, Name: "Old",
		VerificationType: tourquest.VerificationText, Password: "x",
	}})
	if err := p.Save(ctx, docStops, stopsJSON); err != nil {
		t.Fatalf("save stops: %v", err)
	}

	s2, err := Open(ctx, p)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}

	// User data survives the version bump; defaults are backfilled.
	if _, err := s2.GetTour(ctx, created.ID); err != nil {
		t.Errorf("tour lost across version bump: %v", err)
	}
	stop, err := s2.GetStop(ctx, "old-stop")
	if err != nil {
		t.Fatalf("stop lost across version bump: %v", err)
	}
	if stop.FailuresAllowed != tourquest.DefaultFailuresAllowed || stop.GPSRadius != tourquest.DefaultGPSRadius {
		t.Errorf("defaults not backfilled: %+v", stop)
	}

	// The marker is restamped, so the next open migrates nothing.
	var version string
	data, _ := p.Load(ctx, docVersion)
	json.Unmarshal(data, &version)
	if version != seedVersion {
		t.Errorf("data version = %q, want %q", version, seedVersion)
	}
}

func TestOpenReseedsOnCorruptDocument(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersistence()

	if _, err := Open(ctx, p); err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := p.Save(ctx, docTours, []byte(`{"not":"an array"`)); err != nil {
		t.Fatalf("corrupt document: %v", err)
	}

	s, err := Open(ctx, p)
	if err != nil {
		t.Fatalf("reopen over corrupt data: %v", err)
	}
	tours, _ := s.ListTours(ctx)
	if len(tours) != 1 {
		t.Errorf("expected reseed over corrupt data, got %d tours", len(tours))
	}
}

func TestCreateAndGetTour(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.CreateTour(ctx, TourDraft{
		Name:        "Ghost Walk",
		Description: "A spooky stroll",
		City:        "Savannah, GA",
		Theme:       "horror",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create tour: %v", err)
	}
	if created.ID == "" {
		t.Error("created tour has no id")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Error("created/updated timestamps should be set and equal")
	}

	got, err := s.GetTour(ctx, created.ID)
	if err != nil {
		t.Fatalf("get tour: %v", err)
	}
	if got.Name != "Ghost Walk" || got.City != "Savannah, GA" {
		t.Errorf("got %+v", got)
	}
}

func TestGetTourNotFound(t *testing.T) {
	s := openStore(t)
	if _, err := s.GetTour(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListToursNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// Seeded tour predates both; force distinct creation times.
	a, _ := s.CreateTour(ctx, TourDraft{Name: "A"})
	time.Sleep(2 * time.Millisecond)
	b, _ := s.CreateTour(ctx, TourDraft{Name: "B"})

	tours, err := s.ListTours(ctx)
	if err != nil {
		t.Fatalf("list tours: %v", err)
	}
	if len(tours) != 3 {
		t.Fatalf("expected 3 tours, got %d", len(tours))
	}
	if tours[0].ID != b.ID || tours[1].ID != a.ID {
		t.Errorf("expected newest first, got %q, %q", tours[0].Name, tours[1].Name)
	}
}

func TestUpdateTourPartial(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, _ := s.CreateTour(ctx, TourDraft{Name: "Orig", City: "Miami", Theme: "food"})
	time.Sleep(2 * time.Millisecond)

	updated, err := s.UpdateTour(ctx, created.ID, TourUpdate{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("update tour: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.City != "Miami" || updated.Theme != "food" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updated_at should advance on update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_at must never change")
	}
}

func TestUpdateTourClearsCoverImage(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, _ := s.CreateTour(ctx, TourDraft{Name: "T", CoverImage: strPtr("http://x/img.png")})
	if created.CoverImage == nil {
		t.Fatal("cover image not stored")
	}

	updated, err := s.UpdateTour(ctx, created.ID, TourUpdate{CoverImage: strPtr("")})
	if err != nil {
		t.Fatalf("update tour: %v", err)
	}
	if updated.CoverImage != nil {
		t.Errorf("empty string should clear the cover image, got %q", *updated.CoverImage)
	}
}

func TestDeleteTourCascades(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tour, _ := s.CreateTour(ctx, TourDraft{Name: "Doomed"})
	stop, _ := s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 1, Name: "Only stop"})

	if err := s.DeleteTour(ctx, tour.ID); err != nil {
		t.Fatalf("delete tour: %v", err)
	}
	if _, err := s.GetTour(ctx, tour.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("tour still present: %v", err)
	}
	if _, err := s.GetStop(ctx, stop.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphaned stop survived cascade: %v", err)
	}

	// Other tours' stops are untouched.
	demo, _ := s.ListTours(ctx)
	stops, _ := s.ListStops(ctx, demo[0].ID)
	if len(stops) != 5 {
		t.Errorf("cascade deleted unrelated stops, %d left", len(stops))
	}
}

func TestDuplicateTour(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tours, _ := s.ListTours(ctx)
	src := tours[0]
	srcStops, _ := s.ListStops(ctx, src.ID)

	dup, err := s.DuplicateTour(ctx, src.ID)
	if err != nil {
		t.Fatalf("duplicate tour: %v", err)
	}
	if dup.ID == src.ID {
		t.Error("duplicate shares the source id")
	}
	if dup.Name != src.Name+" (Copy)" {
		t.Errorf("duplicate name = %q", dup.Name)
	}
	if dup.IsActive {
		t.Error("duplicate must start inactive")
	}

	dupStops, _ := s.ListStops(ctx, dup.ID)
	if len(dupStops) != len(srcStops) {
		t.Fatalf("duplicate has %d stops, want %d", len(dupStops), len(srcStops))
	}
	for i := range dupStops {
		if dupStops[i].ID == srcStops[i].ID {
			t.Errorf("stop %d shares the source id", i)
		}
		if dupStops[i].StopNumber != srcStops[i].StopNumber {
			t.Errorf("stop %d number = %d, want %d", i, dupStops[i].StopNumber, srcStops[i].StopNumber)
		}
		if dupStops[i].Password != srcStops[i].Password {
			t.Errorf("stop %d content not copied", i)
		}
	}
}

func TestCreateStopDefaults(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tour, _ := s.CreateTour(ctx, TourDraft{Name: "T"})
	stop, err := s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 1, Name: "S"})
	if err != nil {
		t.Fatalf("create stop: %v", err)
	}

	if stop.FailuresAllowed != tourquest.DefaultFailuresAllowed {
		t.Errorf("failures allowed = %d, want %d", stop.FailuresAllowed, tourquest.DefaultFailuresAllowed)
	}
	if stop.GPSRadius != tourquest.DefaultGPSRadius {
		t.Errorf("gps radius = %d, want %d", stop.GPSRadius, tourquest.DefaultGPSRadius)
	}
	if !stop.AutoShowHint || !stop.EnableSkip {
		t.Error("auto hint and skip should default on")
	}

	// Explicit values survive.
	stop2, _ := s.CreateStop(ctx, StopDraft{
		TourID:          tour.ID,
		StopNumber:      2,
		Name:            "S2",
		FailuresAllowed: 5,
		GPSRadius:       120,
		AutoShowHint:    boolPtr(false),
		EnableSkip:      boolPtr(false),
	})
	if stop2.FailuresAllowed != 5 || stop2.GPSRadius != 120 {
		t.Errorf("explicit knobs overwritten: %+v", stop2)
	}
	if stop2.AutoShowHint || stop2.EnableSkip {
		t.Error("explicit false should stick")
	}
}

func TestUpdateStopPartial(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tour, _ := s.CreateTour(ctx, TourDraft{Name: "T"})
	stop, _ := s.CreateStop(ctx, StopDraft{
		TourID:           tour.ID,
		StopNumber:       1,
		Name:             "S",
		VerificationType: tourquest.VerificationText,
		Password:         "open sesame",
		Tips:             []string{"look up"},
	})

	updated, err := s.UpdateStop(ctx, stop.ID, StopUpdate{
		Password:        strPtr("new pass"),
		FailuresAllowed: intPtr(4),
	})
	if err != nil {
		t.Fatalf("update stop: %v", err)
	}
	if updated.Password != "new pass" || updated.FailuresAllowed != 4 {
		t.Errorf("got %+v", updated)
	}
	if updated.Name != "S" || len(updated.Tips) != 1 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.TourID != tour.ID {
		t.Error("owning tour must be immutable")
	}
}

func TestListStopsOrderedByNumber(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tour, _ := s.CreateTour(ctx, TourDraft{Name: "T"})
	s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 3, Name: "third"})
	s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 1, Name: "first"})
	s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 2, Name: "second"})

	stops, _ := s.ListStops(ctx, tour.ID)
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if stops[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, stops[i].Name, name)
		}
	}
}

func TestReorderStops(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tour, _ := s.CreateTour(ctx, TourDraft{Name: "T"})
	a, _ := s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 1, Name: "a"})
	b, _ := s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 2, Name: "b"})
	c, _ := s.CreateStop(ctx, StopDraft{TourID: tour.ID, StopNumber: 3, Name: "c"})

	// A stop belonging to another tour must be ignored even if its id is
	// passed in the order.
	other, _ := s.CreateTour(ctx, TourDraft{Name: "Other"})
	foreign, _ := s.CreateStop(ctx, StopDraft{TourID: other.ID, StopNumber: 1, Name: "x"})

	if err := s.ReorderStops(ctx, tour.ID, []string{c.ID, foreign.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	stops, _ := s.ListStops(ctx, tour.ID)
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if stops[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, stops[i].Name, name)
		}
	}

	got, _ := s.GetStop(ctx, foreign.ID)
	if got.StopNumber != 1 {
		t.Errorf("foreign stop renumbered to %d", got.StopNumber)
	}
}

func TestResetToFactory(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	extra, _ := s.CreateTour(ctx, TourDraft{Name: "Extra"})
	if err := s.ResetToFactory(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := s.GetTour(ctx, extra.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("reset kept extra tour: %v", err)
	}
	tours, _ := s.ListTours(ctx)
	if len(tours) != 1 {
		t.Fatalf("expected demo dataset after reset, got %d tours", len(tours))
	}

	// Reset is idempotent.
	if err := s.ResetToFactory(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	again, _ := s.ListTours(ctx)
	if len(again) != 1 || again[0].ID != tours[0].ID {
		t.Error("repeated resets should yield identical content")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tours, _ := s.ListTours(ctx)
	stops, _ := s.ListStops(ctx, tours[0].ID)

	stops[0].Tips[0] = "tampered"
	stops[0].Password = "tampered"

	fresh, _ := s.GetStop(ctx, stops[0].ID)
	if fresh.Tips[0] == "tampered" || fresh.Password == "tampered" {
		t.Error("mutating a returned stop leaked into the store")
	}
}
