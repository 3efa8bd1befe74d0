package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrMalformedFrames = errors.New("storage: malformed frames file")

const frameFields = 8

var frameHeader = []string{"frame", "time", "index", "x", "y", "vx", "vy", "mass"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	MaxDt     float64            `json:"max_dt"`
	Policy    string             `json:"policy"`
	Params    map[string]float64 `json:"params,omitempty"`
	Options   map[string]string  `json:"options,omitempty"`
	Frames    int                `json:"frames"`
	Substeps  int                `json:"substeps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded frames of result under a new run
// directory and returns the run ID.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Scene, now.UnixNano())
	}
	meta.Timestamp = now
	meta.Frames = len(result.Frames)
	meta.Substeps = result.Substeps
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFrames(csvFile, result.Frames); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteFrames writes one CSV row per particle per frame.
func WriteFrames(out io.Writer, frames []dynamo.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(frameHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, f := range frames {
		for i, p := range f.Particles {
			row := []string{
				strconv.Itoa(f.Index),
				format(f.Time),
				strconv.Itoa(i),
				format(p.Position.X),
				format(p.Position.Y),
				format(p.Velocity.X),
				format(p.Velocity.Y),
				format(p.Mass),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]dynamo.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames, err := ReadFrames(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return frames, nil
}

// ReadFrames parses the output of WriteFrames. Rows must be grouped by
// frame and ordered by particle index within a frame.
func ReadFrames(in io.Reader) ([]dynamo.Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = frameFields

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrames, err)
	}
	if len(records) < 2 {
		return []dynamo.Frame{}, nil
	}

	frames := make([]dynamo.Frame, 0)
	for line, record := range records[1:] {
		var vals [frameFields]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedFrames, line+2, err)
			}
			vals[j] = v
		}

		index := int(vals[0])
		if n := len(frames); n == 0 || frames[n-1].Index != index {
			frames = append(frames, dynamo.Frame{Index: index, Time: vals[1]})
		}
		f := &frames[len(frames)-1]
		if int(vals[2]) != len(f.Particles) {
			return nil, fmt.Errorf("%w: line %d: particle %d out of order", ErrMalformedFrames, line+2, int(vals[2]))
		}
		f.Particles = append(f.Particles, fluid.ParticleState{
			Position: fluid.Vec2{X: vals[3], Y: vals[4]},
			Velocity: fluid.Vec2{X: vals[5], Y: vals[6]},
			Mass:     vals[7],
		})
	}
	return frames, nil
}
