package analysis

import (
	"strings"

	"github.com/san-kum/ddrfluid/internal/dynamo"
)

type Point struct{ X, Y float64 }

// Trajectory is a path through the world box.
type Trajectory struct {
	Index  int // particle index, -1 for the centre of mass
	Points []Point
}

// ParticleTrajectory traces particle idx across frames. Frames that do not
// contain idx are skipped.
func ParticleTrajectory(frames []dynamo.Frame, idx int) *Trajectory {
	traj := &Trajectory{Index: idx, Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		if idx < 0 || idx >= len(f.Particles) {
			continue
		}
		p := f.Particles[idx].Position
		traj.Points = append(traj.Points, Point{X: p.X, Y: p.Y})
	}
	return traj
}

func CenterOfMassPath(frames []dynamo.Frame) *Trajectory {
	traj := &Trajectory{Index: -1, Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		c := CenterOfMass(f.Particles)
		traj.Points = append(traj.Points, Point{X: c.X, Y: c.Y})
	}
	return traj
}

// TrajectoryToASCII plots traj inside a fixed width x height world box,
// y up.
func TrajectoryToASCII(traj *Trajectory, worldW, worldH float64, width, height int) string {
	if traj == nil || len(traj.Points) == 0 || width < 1 || height < 1 {
		return ""
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range traj.Points {
		col := int(p.X / worldW * float64(width-1))
		row := height - 1 - int(p.Y/worldH*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	last := traj.Points[len(traj.Points)-1]
	col := int(last.X / worldW * float64(width-1))
	row := height - 1 - int(last.Y/worldH*float64(height-1))
	if row >= 0 && row < height && col >= 0 && col < width {
		canvas[row][col] = '◆'
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
