package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/particlefield/internal/field"
)

const (
	prefsFile    = "prefs.json"
	snapshotsDir = "snapshots"
	metaFile     = "metadata.json"
	pointsFile   = "points.csv"
)

var ErrNotFound = errors.New("storage: snapshot not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.baseDir, snapshotsDir), 0755)
}

// Prefs are user preferences that survive restarts.
type Prefs struct {
	Theme string `json:"theme,omitempty"`
}

// LoadPrefs returns the stored preferences. A missing file yields zero Prefs.
func (s *Store) LoadPrefs() (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(filepath.Join(s.baseDir, prefsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

func (s *Store) SavePrefs(p Prefs) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.baseDir, prefsFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(s.baseDir, prefsFile))
}

type SnapshotMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Points    int       `json:"points"`
	Links     int       `json:"links"`
	Frame     uint64    `json:"frame"`
	Seed      int64     `json:"seed"`
	Theme     string    `json:"theme"`
}

// SaveSnapshot writes the field's points and metadata under a new id.
func (s *Store) SaveSnapshot(f *field.Field, seed int64, theme string) (*SnapshotMetadata, error) {
	id := uuid.New().String()[:8]
	dir := filepath.Join(s.baseDir, snapshotsDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	meta := &SnapshotMetadata{
		ID:        id,
		Timestamp: time.Now(),
		Width:     f.Width,
		Height:    f.Height,
		Points:    len(f.Points),
		Links:     f.Links(),
		Frame:     f.Frame(),
		Seed:      seed,
		Theme:     theme,
	}

	metaOut, err := os.Create(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	defer metaOut.Close()

	enc := json.NewEncoder(metaOut)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}

	csvOut, err := os.Create(filepath.Join(dir, pointsFile))
	if err != nil {
		return nil, err
	}
	defer csvOut.Close()

	w := csv.NewWriter(csvOut)
	if err := w.Write([]string{"x", "y", "vx", "vy"}); err != nil {
		return nil, err
	}
	for _, p := range f.Points {
		row := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
			strconv.FormatFloat(p.VX, 'g', -1, 64),
			strconv.FormatFloat(p.VY, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return meta, nil
}

// List returns all snapshots, newest first.
func (s *Store) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, snapshotsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotMetadata{}, nil
		}
		return nil, err
	}

	snaps := make([]SnapshotMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, *meta)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

func (s *Store) Load(id string) (*SnapshotMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.snapshotDir(id), metaFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadPoints(id string) ([]field.Point, error) {
	file, err := os.Open(filepath.Join(s.snapshotDir(id), pointsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []field.Point{}, nil
	}

	points := make([]field.Point, 0, len(records)-1)
	for i, rec := range records[1:] {
		var v [4]float64
		for j := range v {
			v[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("points.csv line %d: %w", i+2, err)
			}
		}
		points = append(points, field.Point{X: v[0], Y: v[1], VX: v[2], VY: v[3]})
	}
	return points, nil
}

func (s *Store) snapshotDir(id string) string {
	return filepath.Join(s.baseDir, snapshotsDir, filepath.Base(id))
}
