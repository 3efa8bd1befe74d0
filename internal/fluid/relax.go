package fluid

// kernel is the relaxation weight max(1 - d/h, 0).
func kernel(dist, h float64) float64 {
	g := 1 - dist/h
	if g < 0 {
		return 0
	}
	return g
}

// densityAt sums density and near density for particle i over nb. The
// particle itself does not contribute.
func (w *World) densityAt(i int, nb []int) (density, near float64) {
	h := w.params.InteractionRadius
	p := &w.particles[i]
	for _, j := range nb {
		if j == i {
			continue
		}
		g := kernel(w.particles[j].Position.Sub(p.Position).Len(), h)
		g2 := g * g
		density += g2 * p.Mass
		near += g2 * g * p.Mass
	}
	return density, near
}

func (w *World) pressures(i int, nb []int) (pressure, near float64) {
	density, nearDensity := w.densityAt(i, nb)
	m := w.particles[i].Mass
	pressure = w.params.Stiffness * (density - w.params.RestDensity) * m
	near = w.params.StiffnessNear * nearDensity * m
	return pressure, near
}

func (w *World) doubleDensityRelaxation(dt float64) {
	if w.params.Options.Pairs == DoubleVisit {
		w.relaxDoubleVisit(dt)
		return
	}
	w.relaxUniquePairs(dt)
}

// relaxDoubleVisit corrects pairs in place from each particle's point of
// view; a pair is corrected once per endpoint and later particles see the
// positions earlier ones produced.
func (w *World) relaxDoubleVisit(dt float64) {
	h := w.params.InteractionRadius
	for i := range w.particles {
		nb := w.neighbors(i)
		pressure, near := w.pressures(i, nb)
		for _, j := range nb {
			if j == i {
				continue
			}
			a, b := &w.particles[i], &w.particles[j]
			rel := b.Position.Sub(a.Position)
			dist := rel.Len()
			if dist < Epsilon || dist >= h {
				continue
			}
			g := kernel(dist, h)
			force := rel.Div(dist).Scale(pressure*g + near*g*g)

			total := a.Mass + b.Mass
			ka, kb := b.Mass/total, a.Mass/total
			dPos, dVel := force.Scale(dt*dt), force.Scale(dt)
			a.Position = a.Position.Sub(dPos.Scale(ka))
			a.Velocity = a.Velocity.Sub(dVel.Scale(ka))
			b.Position = b.Position.Add(dPos.Scale(kb))
			b.Velocity = b.Velocity.Add(dVel.Scale(kb))
		}
	}
}

// relaxUniquePairs computes every pressure from the same positions, visits
// each unordered pair once and applies the accumulated corrections at the
// end. Corrections of a pair are mass weighted and opposite, so the pass
// conserves momentum.
func (w *World) relaxUniquePairs(dt float64) {
	h := w.params.InteractionRadius
	s := &w.scratch

	for i := range w.particles {
		s.pressure[i], s.pressureNear[i] = w.pressures(i, w.neighbors(i))
		s.dPos[i], s.dVel[i] = Vec2{}, Vec2{}
	}

	for i := range w.particles {
		for _, j := range w.neighbors(i) {
			if j <= i {
				continue
			}
			a, b := &w.particles[i], &w.particles[j]
			rel := b.Position.Sub(a.Position)
			dist := rel.Len()
			if dist < Epsilon || dist >= h {
				continue
			}
			g := kernel(dist, h)
			mag := 0.5 * ((s.pressure[i]+s.pressure[j])*g + (s.pressureNear[i]+s.pressureNear[j])*g*g)
			force := rel.Div(dist).Scale(mag)

			total := a.Mass + b.Mass
			ka, kb := b.Mass/total, a.Mass/total
			dPos, dVel := force.Scale(dt*dt), force.Scale(dt)
			s.dPos[i] = s.dPos[i].Sub(dPos.Scale(ka))
			s.dVel[i] = s.dVel[i].Sub(dVel.Scale(ka))
			s.dPos[j] = s.dPos[j].Add(dPos.Scale(kb))
			s.dVel[j] = s.dVel[j].Add(dVel.Scale(kb))
		}
	}

	for i := range w.particles {
		p := &w.particles[i]
		p.Position = p.Position.Add(s.dPos[i])
		p.Velocity = p.Velocity.Add(s.dVel[i])
	}
}
