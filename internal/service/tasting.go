package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/types"
)

// TastingService owns the tasting-record lifecycle: validation, ID
// assignment, persistence, group catalog, filtering and similarity lookups.
type TastingService struct {
	db *gorm.DB

	idMu   sync.Mutex
	lastID int64

	groupMu     sync.Mutex
	extraGroups []string
}

// NewTastingService creates a new TastingService instance
func NewTastingService(db *gorm.DB) *TastingService {
	return &TastingService{db: db}
}

// nextID returns a time-based, strictly monotonic record ID. Two saves in
// the same millisecond still get distinct IDs.
func (s *TastingService) nextID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Save validates the record, assigns its ID and date, and appends it to the
// store. On validation failure nothing is persisted and the error lists
// every missing required field.
func (s *TastingService) Save(ctx context.Context, record *models.TastingRecord) (*models.TastingRecord, error) {
	if missing := record.MissingFields(); len(missing) > 0 {
		return nil, &types.ValidationError{Fields: missing}
	}

	ratings, err := record.Ratings.Normalize()
	if err != nil {
		return nil, types.NewInputError("ratings", err)
	}
	record.Ratings = ratings
	record.RatingVec = ratings.Vector()

	flavors, err := normalizeFlavors(record.Flavors)
	if err != nil {
		return nil, err
	}
	record.Flavors = flavors

	record.ID = s.nextID()
	record.Date = time.Now().UTC()

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, &types.PersistenceError{Op: "save", Err: err}
	}
	return record, nil
}

// Get retrieves one record by ID.
func (s *TastingService) Get(ctx context.Context, id int64) (*models.TastingRecord, error) {
	var record models.TastingRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &types.PersistenceError{Op: "get", Err: err}
	}
	return &record, nil
}

// ListAll returns every record in insertion order.
func (s *TastingService) ListAll(ctx context.Context) ([]models.TastingRecord, error) {
	var records []models.TastingRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, &types.PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

// ListByGroup filters records by exact group match. The Ungrouped sentinel
// selects records whose stored group is absent or empty; the stored value is
// never mutated. An empty group returns everything.
func (s *TastingService) ListByGroup(ctx context.Context, group string) ([]models.TastingRecord, error) {
	if group == "" {
		return s.ListAll(ctx)
	}

	query := s.db.WithContext(ctx).Order("id asc")
	if group == models.UngroupedLabel {
		query = query.Where("group_name IS NULL OR group_name = ''")
	} else {
		query = query.Where("group_name = ?", group)
	}

	var records []models.TastingRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, &types.PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

// DeleteByID removes the record permanently. Deleting an absent ID is a
// no-op, not an error.
func (s *TastingService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&models.TastingRecord{}, "id = ?", id).Error; err != nil {
		return &types.PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// UpdateChart replaces the stored chart snapshot. Captures race with rapid
// rating edits on the client; whichever capture completes last wins.
func (s *TastingService) UpdateChart(ctx context.Context, id int64, chartImage string) error {
	result := s.db.WithContext(ctx).Model(&models.TastingRecord{}).
		Where("id = ?", id).
		Update("chart_image", chartImage)
	if result.Error != nil {
		return &types.PersistenceError{Op: "update chart", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ToggleFlavor flips membership of one vocabulary tag on the record.
func (s *TastingService) ToggleFlavor(ctx context.Context, id int64, flavor string) (*models.TastingRecord, error) {
	if !models.IsKnownFlavor(flavor) {
		return nil, types.NewInputError(fmt.Sprintf("unknown flavor tag %q", flavor), nil)
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Flavors = record.Flavors.Toggle(flavor)
	if err := s.db.WithContext(ctx).Model(record).Update("flavors", record.Flavors).Error; err != nil {
		return nil, &types.PersistenceError{Op: "toggle flavor", Err: err}
	}
	return record, nil
}

// Groups returns the known-group catalog: the Ungrouped bucket, the built-in
// defaults, session-created groups, and every distinct group discovered on
// stored records. Groups are not a stored entity of their own.
func (s *TastingService) Groups(ctx context.Context) ([]string, error) {
	var stored []string
	err := s.db.WithContext(ctx).Model(&models.TastingRecord{}).
		Distinct("group_name").
		Where("group_name IS NOT NULL AND group_name <> ''").
		Pluck("group_name", &stored).Error
	if err != nil {
		return nil, &types.PersistenceError{Op: "list groups", Err: err}
	}
	sort.Strings(stored)

	s.groupMu.Lock()
	extras := append([]string(nil), s.extraGroups...)
	s.groupMu.Unlock()

	groups := []string{models.UngroupedLabel}
	seen := map[string]bool{models.UngroupedLabel: true}
	for _, set := range [][]string{models.DefaultGroups, extras, stored} {
		for _, g := range set {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	return groups, nil
}

// AddGroup registers a new group label. The name is trimmed, deduplicated
// against the current catalog, and silently dropped when empty after
// trimming. The updated catalog is returned either way.
func (s *TastingService) AddGroup(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		groups, err := s.Groups(ctx)
		if err != nil {
			return nil, err
		}
		known := false
		for _, g := range groups {
			if g == name {
				known = true
				break
			}
		}
		if !known {
			s.groupMu.Lock()
			s.extraGroups = append(s.extraGroups, name)
			s.groupMu.Unlock()
		}
	}
	return s.Groups(ctx)
}

// Snapshot returns the whole collection as one ordered array, matching the
// single-key JSON layout the mobile client kept in its local store.
func (s *TastingService) Snapshot(ctx context.Context) ([]models.TastingRecord, error) {
	return s.ListAll(ctx)
}

// Restore replaces the whole collection with the given records, preserving
// their order and deduplicating by ID (first occurrence wins). Records keep
// their original IDs and dates; the ID generator is advanced past the
// largest imported ID so future saves cannot collide.
func (s *TastingService) Restore(ctx context.Context, records []models.TastingRecord) error {
	seen := make(map[int64]bool, len(records))
	var maxID int64

	cleaned := make([]models.TastingRecord, 0, len(records))
	for i := range records {
		record := records[i]
		if record.ID == 0 || seen[record.ID] {
			continue
		}
		seen[record.ID] = true

		if missing := record.MissingFields(); len(missing) > 0 {
			return &types.ValidationError{Fields: missing}
		}
		ratings, err := record.Ratings.Normalize()
		if err != nil {
			return types.NewInputError(fmt.Sprintf("record %d ratings", record.ID), err)
		}
		record.Ratings = ratings
		record.RatingVec = ratings.Vector()

		flavors, err := normalizeFlavors(record.Flavors)
		if err != nil {
			return err
		}
		record.Flavors = flavors

		if record.ID > maxID {
			maxID = record.ID
		}
		cleaned = append(cleaned, record)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TastingRecord{}).Error; err != nil {
			return err
		}
		for i := range cleaned {
			if err := tx.Create(&cleaned[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &types.PersistenceError{Op: "restore", Err: err}
	}

	s.idMu.Lock()
	if maxID > s.lastID {
		s.lastID = maxID
	}
	s.idMu.Unlock()
	return nil
}

// FindSimilar returns up to limit records whose rating profiles are nearest
// to the given record's. On postgres the lookup uses the pgvector distance
// operator; elsewhere it falls back to an in-memory scan.
func (s *TastingService) FindSimilar(ctx context.Context, id int64, limit int) ([]models.TastingRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.db.Dialector.Name() == "postgres" {
		var records []models.TastingRecord
		err := s.db.WithContext(ctx).
			Where("id <> ?", id).
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "rating_vec <-> ?", Vars: []interface{}{record.RatingVec}},
			}).
			Limit(limit).
			Find(&records).Error
		if err != nil {
			return nil, &types.PersistenceError{Op: "similarity search", Err: err}
		}
		return records, nil
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		record   models.TastingRecord
		distance float64
	}
	candidates := make([]scored, 0, len(all))
	for _, other := range all {
		if other.ID == id {
			continue
		}
		candidates = append(candidates, scored{other, ratingDistance(record.Ratings, other.Ratings)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]models.TastingRecord, len(candidates))
	for i, c := range candidates {
		records[i] = c.record
	}
	return records, nil
}

// ratingDistance is the Euclidean distance between two rating profiles over
// the fixed attribute order.
func ratingDistance(a, b models.RatingsMap) float64 {
	var sum float64
	for _, key := range models.RatingAttributes {
		d := float64(a[key] - b[key])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// normalizeFlavors deduplicates the tag list preserving first occurrence and
// rejects tags outside the fixed vocabulary.
func normalizeFlavors(flavors models.FlavorList) (models.FlavorList, error) {
	out := make(models.FlavorList, 0, len(flavors))
	for _, tag := range flavors {
		if !models.IsKnownFlavor(tag) {
			return nil, types.NewInputError(fmt.Sprintf("unknown flavor tag %q", tag), nil)
		}
		if !out.Has(tag) {
			out = append(out, tag)
		}
	}
	return out, nil
}
