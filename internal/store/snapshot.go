package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// ErrInvalidSnapshot is returned by ImportSnapshot for any blob that does
// not decode to the expected shape. The store is left untouched.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

type snapshot struct {
	Tours []tourquest.Tour `json:"tours"`
	Stops []tourquest.Stop `json:"stops"`
}

// ExportSnapshot encodes the entire tour and stop collections as a single
// transportable string: base64 over the JSON {tours, stops} object. Used
// for manual device-to-device transfer.
func (s *TourStore) ExportSnapshot(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snapshot{Tours: s.tours, Stops: s.stops})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImportSnapshot reverses ExportSnapshot and replaces both collections
// wholesale. The blob must decode to an object carrying both the tours
// and stops arrays; anything else fails with ErrInvalidSnapshot and no
// state change. The new collections are persisted before the in-memory
// swap, so a storage failure also leaves the store as it was.
func (s *TourStore) ImportSnapshot(ctx context.Context, blob string) error {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return ErrInvalidSnapshot
	}

	var raw struct {
		Tours *[]tourquest.Tour `json:"tours"`
		Stops *[]tourquest.Stop `json:"stops"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidSnapshot
	}
	if raw.Tours == nil || raw.Stops == nil {
		return ErrInvalidSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toursJSON, err := json.Marshal(*raw.Tours)
	if err != nil {
		return err
	}
	stopsJSON, err := json.Marshal(*raw.Stops)
	if err != nil {
		return err
	}
	err = s.p.SaveAll(ctx, map[string][]byte{docTours: toursJSON, docStops: stopsJSON})
	if err != nil {
		return err
	}

	s.tours = *raw.Tours
	s.stops = *raw.Stops
	return nil
}
