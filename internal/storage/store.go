package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Params     map[string]float64 `json:"params,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Ticks      int                `json:"ticks"`
	Elapsed    float64            `json:"elapsed"`
	Integrator string             `json:"integrator"`
	G          float64            `json:"g"`
	Softening  float64            `json:"softening"`
	Bodies     int                `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

var header = []string{
	"x", "y", "z", "vx", "vy", "vz",
	"kind", "mass", "radius", "color", "trail_length", "trail_resolution",
}

// Save writes meta and the body snapshot under a new run directory and
// returns its ID.
func (s *Store) Save(meta Metadata, bodies []world.Body) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scene, meta.Timestamp.UnixNano())
	meta.Bodies = len(bodies)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "bodies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, bodies); err != nil {
		return "", err
	}
	return meta.ID, csvFile.Sync()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per body.
func WriteCSV(out io.Writer, bodies []world.Body) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, b := range bodies {
		trailLength, trailResolution := "", ""
		if b.Trail != nil {
			trailLength = format(b.Trail.Length)
			trailResolution = strconv.Itoa(b.Trail.Resolution)
		}
		row := []string{
			format(b.Position.X()), format(b.Position.Y()), format(b.Position.Z()),
			format(b.Velocity.X()), format(b.Velocity.Y()), format(b.Velocity.Z()),
			b.Mass.Kind.String(), format(b.Mass.Mass),
			format(b.Appearance.Radius), b.Appearance.Color.Hex(),
			trailLength, trailResolution,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns saved runs, newest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadBodies reads a snapshot back as spawnable specs.
func (s *Store) LoadBodies(runID string) ([]world.BodySpec, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "bodies.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

func ReadCSV(in io.Reader) ([]world.BodySpec, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []world.BodySpec{}, nil
	}

	specs := make([]world.BodySpec, 0, len(records)-1)
	for i, record := range records[1:] {
		spec, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseRow(record []string) (world.BodySpec, error) {
	var nums [6]float64
	for i := range nums {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return world.BodySpec{}, err
		}
		nums[i] = v
	}
	mass, err := strconv.ParseFloat(record[7], 64)
	if err != nil {
		return world.BodySpec{}, err
	}
	radius, err := strconv.ParseFloat(record[8], 64)
	if err != nil {
		return world.BodySpec{}, err
	}
	color, err := world.ParseColor(record[9])
	if err != nil {
		return world.BodySpec{}, err
	}

	spec := world.BodySpec{
		Position: dynamo.Vec{nums[0], nums[1], nums[2]},
		Velocity: dynamo.Vec{nums[3], nums[4], nums[5]},
		Radius:   radius,
		Color:    color,
	}
	switch record[6] {
	case world.Gravitating.String():
		spec.Mass = world.HasGravity(mass)
	case world.Test.String():
		spec.Mass = world.AffectedByGravity()
	default:
		return world.BodySpec{}, fmt.Errorf("unknown mass kind %q", record[6])
	}

	if record[10] != "" {
		length, err := strconv.ParseFloat(record[10], 64)
		if err != nil {
			return world.BodySpec{}, err
		}
		resolution, err := strconv.Atoi(record[11])
		if err != nil {
			return world.BodySpec{}, err
		}
		tr := world.NewTrail(length, resolution)
		spec.Trail = &tr
	}
	return spec, nil
}
