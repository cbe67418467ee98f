package store

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)

	extra, _ := src.CreateTour(ctx, TourDraft{Name: "Extra", City: "Orlando"})
	src.CreateStop(ctx, StopDraft{TourID: extra.ID, StopNumber: 1, Name: "Gate"})

	blob, err := src.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := openStore(t)
	if err := dst.ImportSnapshot(ctx, blob); err != nil {
		t.Fatalf("import: %v", err)
	}

	srcTours, _ := src.ListTours(ctx)
	dstTours, _ := dst.ListTours(ctx)
	if len(srcTours) != len(dstTours) {
		t.Fatalf("tour count %d != %d", len(dstTours), len(srcTours))
	}
	for i := range srcTours {
		if srcTours[i].ID != dstTours[i].ID || srcTours[i].Name != dstTours[i].Name {
			t.Errorf("tour %d mismatch: %q vs %q", i, dstTours[i].Name, srcTours[i].Name)
		}
	}

	got, err := dst.GetTour(ctx, extra.ID)
	if err != nil {
		t.Fatalf("imported tour missing: %v", err)
	}
	stops, _ := dst.ListStops(ctx, got.ID)
	if len(stops) != 1 || stops[0].Name != "Gate" {
		t.Errorf("imported stops wrong: %+v", stops)
	}
}

func TestImportRejectsMalformedBlobs(t *testing.T) {
	ctx := context.Background()

	bad := []struct {
		name string
		blob string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"missing stops", base64.StdEncoding.EncodeToString([]byte(`{"tours":[]}`))},
		{"missing tours", base64.StdEncoding.EncodeToString([]byte(`{"stops":[]}`))},
		{"wrong shape", base64.StdEncoding.EncodeToString([]byte(`{"tours":{},"stops":[]}`))},
	}

	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t)
			before, _ := s.ListTours(ctx)

			if err := s.ImportSnapshot(ctx, tt.blob); !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
			}

			after, _ := s.ListTours(ctx)
			if len(after) != len(before) {
				t.Error("failed import must leave the store untouched")
			}
		})
	}
}

func TestImportReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// The demo dataset is present; importing an empty-but-valid snapshot
	// wipes it.
	blob := base64.StdEncoding.EncodeToString([]byte(`{"tours":[],"stops":[]}`))
	if err := s.ImportSnapshot(ctx, blob); err != nil {
		t.Fatalf("import: %v", err)
	}

	tours, _ := s.ListTours(ctx)
	if len(tours) != 0 {
		t.Errorf("expected empty store after import, got %d tours", len(tours))
	}
}
