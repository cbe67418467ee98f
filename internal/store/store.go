// Package store owns Tour and Stop persistence: CRUD, cascade delete,
// duplication, reordering, versioned reseeding, and the export/import
// snapshot format. All durable writes go through a Persistence backend;
// the collections themselves are held in memory and written whole.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

var ErrNotFound = errors.New("not found")

const (
	docTours   = "tours"
	docStops   = "stops"
	docVersion = "data_version"
)

// TourStore is the sole authority over tour and stop data. Reads return
// deep copies; every mutation persists both collections before returning.
type TourStore struct {
	mu    sync.Mutex
	p     Persistence
	tours []tourquest.Tour
	stops []tourquest.Stop
}

// Open loads the persisted collections. Data written under an older
// data version is migrated in place and restamped; the demo dataset is
// installed only when the store is empty or the stored data is
// unreadable.
func Open(ctx context.Context, p Persistence) (*TourStore, error) {
	s := &TourStore{p: p}

	tours, stops, version, ok := s.loadPersisted(ctx)
	if ok && len(tours) > 0 {
		s.tours = tours
		s.stops = stops
		if version != seedVersion {
			migrateData(s.tours, s.stops)
			if err := s.persistVersioned(ctx); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TourStore) loadPersisted(ctx context.Context) (tours []tourquest.Tour, stops []tourquest.Stop, version string, ok bool) {
	load := func(name string, dest any) bool {
		data, err := s.p.Load(ctx, name)
		if errors.Is(err, ErrNoDocument) {
			return true
		}
		if err != nil {
			return false
		}
		return json.Unmarshal(data, dest) == nil
	}

	if !load(docTours, &tours) || !load(docStops, &stops) || !load(docVersion, &version) {
		return nil, nil, "", false
	}
	return tours, stops, version, true
}

// seed discards the in-memory collections, installs the demo dataset, and
// stamps the current data version.
func (s *TourStore) seed(ctx context.Context) error {
	s.tours, s.stops = seedDemoData()
	return s.persistVersioned(ctx)
}

// persistVersioned writes both collections and the current data version
// marker in one transaction.
func (s *TourStore) persistVersioned(ctx context.Context) error {
	docs, err := s.encodeCollections()
	if err != nil {
		return err
	}
	versionJSON, err := json.Marshal(seedVersion)
	if err != nil {
		return err
	}
	docs[docVersion] = versionJSON
	return s.p.SaveAll(ctx, docs)
}

func (s *TourStore) encodeCollections() (map[string][]byte, error) {
	toursJSON, err := json.Marshal(s.tours)
	if err != nil {
		return nil, err
	}
	stopsJSON, err := json.Marshal(s.stops)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{docTours: toursJSON, docStops: stopsJSON}, nil
}

// persist writes both collections in one transaction. Callers hold s.mu.
func (s *TourStore) persist(ctx context.Context) error {
	docs, err := s.encodeCollections()
	if err != nil {
		return err
	}
	return s.p.SaveAll(ctx, docs)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Tour CRUD

// TourDraft holds the caller-settable fields for a new tour.
type TourDraft struct {
	Name        string
	Description string
	City        string
	Theme       string
	CoverImage  *string
	IsActive    bool
}

// TourUpdate is a partial update: nil fields are left unchanged. The id
// and creation timestamp are never settable.
type TourUpdate struct {
	Name        *string
	Description *string
	City        *string
	Theme       *string
	CoverImage  *string
	IsActive    *bool
}

// ListTours returns all tours, newest first.
func (s *TourStore) ListTours(ctx context.Context) ([]tourquest.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tours := make([]tourquest.Tour, len(s.tours))
	for i, t := range s.tours {
		tours[i] = cloneTour(t)
	}
	sort.SliceStable(tours, func(i, j int) bool {
		return tours[i].CreatedAt.After(tours[j].CreatedAt)
	})
	return tours, nil
}

func (s *TourStore) GetTour(ctx context.Context, id string) (tourquest.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tours {
		if t.ID == id {
			return cloneTour(t), nil
		}
	}
	return tourquest.Tour{}, ErrNotFound
}

func (s *TourStore) CreateTour(ctx context.Context, draft TourDraft) (tourquest.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowUTC()
	tour := tourquest.Tour{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		City:        draft.City,
		Theme:       draft.Theme,
		CoverImage:  cloneStringPtr(draft.CoverImage),
		IsActive:    draft.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tours = append(s.tours, tour)

	if err := s.persist(ctx); err != nil {
		return tourquest.Tour{}, err
	}
	return cloneTour(tour), nil
}

func (s *TourStore) UpdateTour(ctx context.Context, id string, u TourUpdate) (tourquest.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tourIndex(id)
	if i < 0 {
		return tourquest.Tour{}, ErrNotFound
	}

	t := &s.tours[i]
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.City != nil {
		t.City = *u.City
	}
	if u.Theme != nil {
		t.Theme = *u.Theme
	}
	if u.CoverImage != nil {
		t.CoverImage = normalizeImage(u.CoverImage)
	}
	if u.IsActive != nil {
		t.IsActive = *u.IsActive
	}
	t.UpdatedAt = nowUTC()

	if err := s.persist(ctx); err != nil {
		return tourquest.Tour{}, err
	}
	return cloneTour(*t), nil
}

// DeleteTour removes the tour and every stop that references it. Both
// collections are persisted in one transaction so no reader can observe
// the tour gone with its stops still present.
func (s *TourStore) DeleteTour(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tourIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.tours = append(s.tours[:i], s.tours[i+1:]...)

	kept := s.stops[:0]
	for _, st := range s.stops {
		if st.TourID != id {
			kept = append(kept, st)
		}
	}
	s.stops = kept

	return s.persist(ctx)
}

// DuplicateTour deep-clones a tour and all its stops under fresh ids.
// The copy is created inactive so it never leaks into the player listing
// before the admin has reviewed it.
func (s *TourStore) DuplicateTour(ctx context.Context, id string) (tourquest.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tourIndex(id)
	if i < 0 {
		return tourquest.Tour{}, ErrNotFound
	}
	src := s.tours[i]

	now := nowUTC()
	dup := cloneTour(src)
	dup.ID = uuid.NewString()
	dup.Name = src.Name + " (Copy)"
	dup.IsActive = false
	dup.CreatedAt = now
	dup.UpdatedAt = now
	s.tours = append(s.tours, dup)

	for _, st := range s.stops {
		if st.TourID != id {
			continue
		}
		stop := cloneStop(st)
		stop.ID = uuid.NewString()
		stop.TourID = dup.ID
		stop.CreatedAt = now
		s.stops = append(s.stops, stop)
	}

	if err := s.persist(ctx); err != nil {
		return tourquest.Tour{}, err
	}
	return cloneTour(dup), nil
}

// Stop CRUD

// StopDraft holds the caller-settable fields for a new stop. Zero-valued
// gameplay knobs fall back to the domain defaults.
type StopDraft struct {
	TourID           string
	StopNumber       int
	Name             string
	Address          string
	StoryText        string
	Instructions     string
	MenuItems        []string
	Tips             []string
	VerificationType tourquest.VerificationType
	Password         string
	Options          []string
	CorrectAnswer    string
	IsInfoOnly       bool
	MediaType        tourquest.MediaType
	BackgroundImage  *string
	FailuresAllowed  int
	AutoShowHint     *bool
	EnableSkip       *bool
	GPSLat           *float64
	GPSLng           *float64
	GPSRadius        int
	ImageURL         *string
	TransitionText   string
	NextStopPreview  string
}

// StopUpdate is a partial update: nil fields are left unchanged. The
// owning tour is fixed at creation; there is no cross-field validation
// (changing the verification type does not clear stale fields).
type StopUpdate struct {
	StopNumber       *int
	Name             *string
	Address          *string
	StoryText        *string
	Instructions     *string
	MenuItems        *[]string
	Tips             *[]string
	VerificationType *tourquest.VerificationType
	Password         *string
	Options          *[]string
	CorrectAnswer    *string
	IsInfoOnly       *bool
	MediaType        *tourquest.MediaType
	BackgroundImage  *string
	FailuresAllowed  *int
	AutoShowHint     *bool
	EnableSkip       *bool
	GPSLat           *float64
	GPSLng           *float64
	GPSRadius        *int
	ImageURL         *string
	TransitionText   *string
	NextStopPreview  *string
}

// ListStops returns a tour's stops ordered by stop number.
func (s *TourStore) ListStops(ctx context.Context, tourID string) ([]tourquest.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stops []tourquest.Stop
	for _, st := range s.stops {
		if st.TourID == tourID {
			stops = append(stops, cloneStop(st))
		}
	}
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].StopNumber < stops[j].StopNumber
	})
	return stops, nil
}

func (s *TourStore) GetStop(ctx context.Context, id string) (tourquest.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.stops {
		if st.ID == id {
			return cloneStop(st), nil
		}
	}
	return tourquest.Stop{}, ErrNotFound
}

func (s *TourStore) CreateStop(ctx context.Context, draft StopDraft) (tourquest.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stop := tourquest.Stop{
		ID:               uuid.NewString(),
		TourID:           draft.TourID,
		StopNumber:       draft.StopNumber,
		Name:             draft.Name,
		Address:          draft.Address,
		StoryText:        draft.StoryText,
		Instructions:     draft.Instructions,
		MenuItems:        cloneStrings(draft.MenuItems),
		Tips:             cloneStrings(draft.Tips),
		VerificationType: draft.VerificationType,
		Password:         draft.Password,
		Options:          cloneStrings(draft.Options),
		CorrectAnswer:    draft.CorrectAnswer,
		IsInfoOnly:       draft.IsInfoOnly,
		MediaType:        draft.MediaType,
		BackgroundImage:  cloneStringPtr(draft.BackgroundImage),
		FailuresAllowed:  draft.FailuresAllowed,
		AutoShowHint:     boolOrDefault(draft.AutoShowHint, true),
		EnableSkip:       boolOrDefault(draft.EnableSkip, true),
		GPSLat:           cloneFloatPtr(draft.GPSLat),
		GPSLng:           cloneFloatPtr(draft.GPSLng),
		GPSRadius:        draft.GPSRadius,
		ImageURL:         cloneStringPtr(draft.ImageURL),
		TransitionText:   draft.TransitionText,
		NextStopPreview:  draft.NextStopPreview,
		CreatedAt:        nowUTC(),
	}
	if stop.FailuresAllowed <= 0 {
		stop.FailuresAllowed = tourquest.DefaultFailuresAllowed
	}
	if stop.GPSRadius <= 0 {
		stop.GPSRadius = tourquest.DefaultGPSRadius
	}
	s.stops = append(s.stops, stop)

	if err := s.persist(ctx); err != nil {
		return tourquest.Stop{}, err
	}
	return cloneStop(stop), nil
}

func (s *TourStore) UpdateStop(ctx context.Context, id string, u StopUpdate) (tourquest.Stop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.stopIndex(id)
	if i < 0 {
		return tourquest.Stop{}, ErrNotFound
	}

	st := &s.stops[i]
	if u.StopNumber != nil {
		st.StopNumber = *u.StopNumber
	}
	if u.Name != nil {
		st.Name = *u.Name
	}
	if u.Address != nil {
		st.Address = *u.Address
	}
	if u.StoryText != nil {
		st.StoryText = *u.StoryText
	}
	if u.Instructions != nil {
		st.Instructions = *u.Instructions
	}
	if u.MenuItems != nil {
		st.MenuItems = cloneStrings(*u.MenuItems)
	}
	if u.Tips != nil {
		st.Tips = cloneStrings(*u.Tips)
	}
	if u.VerificationType != nil {
		st.VerificationType = *u.VerificationType
	}
	if u.Password != nil {
		st.Password = *u.Password
	}
	if u.Options != nil {
		st.Options = cloneStrings(*u.Options)
	}
	if u.CorrectAnswer != nil {
		st.CorrectAnswer = *u.CorrectAnswer
	}
	if u.IsInfoOnly != nil {
		st.IsInfoOnly = *u.IsInfoOnly
	}
	if u.MediaType != nil {
		st.MediaType = *u.MediaType
	}
	if u.BackgroundImage != nil {
		st.BackgroundImage = normalizeImage(u.BackgroundImage)
	}
	if u.FailuresAllowed != nil {
		st.FailuresAllowed = *u.FailuresAllowed
	}
	if u.AutoShowHint != nil {
		st.AutoShowHint = *u.AutoShowHint
	}
	if u.EnableSkip != nil {
		st.EnableSkip = *u.EnableSkip
	}
	if u.GPSLat != nil {
		st.GPSLat = cloneFloatPtr(u.GPSLat)
	}
	if u.GPSLng != nil {
		st.GPSLng = cloneFloatPtr(u.GPSLng)
	}
	if u.GPSRadius != nil {
		st.GPSRadius = *u.GPSRadius
	}
	if u.ImageURL != nil {
		st.ImageURL = normalizeImage(u.ImageURL)
	}
	if u.TransitionText != nil {
		st.TransitionText = *u.TransitionText
	}
	if u.NextStopPreview != nil {
		st.NextStopPreview = *u.NextStopPreview
	}

	if err := s.persist(ctx); err != nil {
		return tourquest.Stop{}, err
	}
	return cloneStop(*st), nil
}

func (s *TourStore) DeleteStop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.stopIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.stops = append(s.stops[:i], s.stops[i+1:]...)
	return s.persist(ctx)
}

// ReorderStops reassigns stop numbers 1..N following the given order.
// Only stops belonging to tourID are touched; ids from other tours or
// unknown ids are skipped. The caller is responsible for passing the
// tour's complete stop set.
func (s *TourStore) ReorderStops(ctx context.Context, tourID string, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pos, id := range orderedIDs {
		for i := range s.stops {
			if s.stops[i].ID == id && s.stops[i].TourID == tourID {
				s.stops[i].StopNumber = pos + 1
				break
			}
		}
	}
	return s.persist(ctx)
}

// ResetToFactory discards everything and reinstalls the demo dataset.
func (s *TourStore) ResetToFactory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed(ctx)
}

func (s *TourStore) tourIndex(id string) int {
	for i, t := range s.tours {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *TourStore) stopIndex(id string) int {
	for i, st := range s.stops {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// Copy helpers. Records carry slices and pointers, so snapshot copies
// have to be deep or callers could mutate store state through them.

func cloneTour(t tourquest.Tour) tourquest.Tour {
	t.CoverImage = cloneStringPtr(t.CoverImage)
	return t
}

func cloneStop(st tourquest.Stop) tourquest.Stop {
	st.MenuItems = cloneStrings(st.MenuItems)
	st.Tips = cloneStrings(st.Tips)
	st.Options = cloneStrings(st.Options)
	st.BackgroundImage = cloneStringPtr(st.BackgroundImage)
	st.GPSLat = cloneFloatPtr(st.GPSLat)
	st.GPSLng = cloneFloatPtr(st.GPSLng)
	st.ImageURL = cloneStringPtr(st.ImageURL)
	return st
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// normalizeImage treats an explicit empty string as clearing the field.
func normalizeImage(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return cloneStringPtr(p)
}

func boolOrDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
