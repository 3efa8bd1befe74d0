package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
)

type ExportData struct {
	Meta   RunMetadata   `json:"meta"`
	Frames []ExportFrame `json:"frames"`
}

type ExportFrame struct {
	Index     int          `json:"index"`
	Time      float64      `json:"time"`
	Substeps  int          `json:"substeps"`
	Particles [][5]float64 `json:"particles"` // x, y, vx, vy, mass
}

func NewExportData(meta RunMetadata, frames []dynamo.Frame) ExportData {
	data := ExportData{Meta: meta, Frames: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		data.Frames[i] = ExportFrame{
			Index:     f.Index,
			Time:      f.Time,
			Substeps:  f.Substeps,
			Particles: make([][5]float64, len(f.Particles)),
		}
		for j, p := range f.Particles {
			data.Frames[i].Particles[j] = packState(p)
		}
	}
	return data
}

func packState(p fluid.ParticleState) [5]float64 {
	return [5]float64{p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y, p.Mass}
}

func ExportJSON(path string, meta RunMetadata, frames []dynamo.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, frames)
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []dynamo.Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, frames))
}
