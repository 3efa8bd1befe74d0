package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ddrfluid/internal/experiment"
)

var ErrNoTrial = errors.New("optim: no trial completed")

// Build returns a ready experiment for one point of the grid.
type Build func(params map[string]float64) (*experiment.Experiment, error)

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Outcome struct {
	Best   map[string]float64
	Value  float64
	Trials []Trial
}

// GridSearch evaluates every combination of the parameter ranges and keeps
// the one with the lowest metric value, or the highest with Maximize.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs one experiment per grid point. A trial whose run fails or
// stops on an invalid state is recorded with its error and never wins.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (*Outcome, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	out := &Outcome{Value: math.Inf(1)}
	if g.Maximize {
		out.Value = math.Inf(-1)
	}
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, build, metricName, out); err != nil {
		return out, err
	}
	if out.Best == nil {
		return out, ErrNoTrial
	}
	return out, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, build Build, metricName string, out *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current}
		trial.Value, trial.Err = evaluate(ctx, build, current, metricName)
		out.Trials = append(out.Trials, trial)
		if trial.Err == nil && g.better(trial.Value, out.Value) {
			out.Value = trial.Value
			out.Best = current
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, metricName, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) better(v, best float64) bool {
	if g.Maximize {
		return v > best
	}
	return v < best
}

func evaluate(ctx context.Context, build Build, params map[string]float64, metricName string) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return 0, err
	}
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	if len(result.Errors) > 0 {
		return 0, result.Errors[0]
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("optim: unknown metric %q", metricName)
	}
	return val, nil
}

// ParseAxis reads "name=v1,v2,..." or "name=lo:hi:n".
func ParseAxis(s string) (string, []float64, error) {
	name, values, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || values == "" {
		return "", nil, fmt.Errorf("optim: bad axis %q, want name=v1,v2 or name=lo:hi:n", s)
	}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil || n < 1 {
			return "", nil, fmt.Errorf("optim: bad range in %q", s)
		}
		return name, Linspace(lo, hi, n), nil
	}

	var vals []float64
	for _, f := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: bad value in %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
