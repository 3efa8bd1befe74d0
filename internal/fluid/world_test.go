package fluid

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func quietParams() Params {
	p := DefaultParams()
	p.Gravity = 0
	p.ViscosityLinear = 0
	p.ViscosityQuad = 0
	return p
}

func mustWorld(p Params) *World {
	w, err := NewWorld(p)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func momentum(w *World) Vec2 {
	var m Vec2
	for _, p := range w.Particles() {
		m = m.Add(p.Velocity.Scale(p.Mass))
	}
	return m
}

var _ = Describe("World", func() {
	Describe("AddParticle", func() {
		It("appends particles at rest in insertion order", func() {
			w := New()
			Expect(w.AddParticle(10, 20, 1)).To(Succeed())
			Expect(w.AddParticle(30, 40, 0.5)).To(Succeed())

			ps := w.Particles()
			Expect(ps).To(HaveLen(2))
			Expect(ps[0].Position).To(Equal(Vec2{X: 10, Y: 20}))
			Expect(ps[1].Mass).To(Equal(0.5))
			Expect(ps[1].Velocity).To(Equal(Vec2{}))
		})

		DescribeTable("rejects invalid particles",
			func(x, y, mass float64) {
				w := New()
				Expect(w.AddParticle(x, y, mass)).To(MatchError(ErrInvalidParticle))
				Expect(w.Len()).To(BeZero())
			},
			Entry("zero mass", 50.0, 50.0, 0.0),
			Entry("negative mass", 50.0, 50.0, -1.0),
			Entry("NaN mass", 50.0, 50.0, math.NaN()),
			Entry("infinite mass", 50.0, 50.0, math.Inf(1)),
			Entry("NaN position", math.NaN(), 50.0, 1.0),
			Entry("infinite position", 50.0, math.Inf(-1), 1.0),
		)
	})

	Describe("Step", func() {
		DescribeTable("rejects a bad dt without touching state",
			func(dt float64) {
				w := New()
				Expect(w.AddParticle(50, 50, 1)).To(Succeed())
				before := w.Particles()
				Expect(w.Step(dt)).To(MatchError(ErrInvalidStep))
				Expect(w.Particles()).To(Equal(before))
			},
			Entry("negative", -0.01),
			Entry("NaN", math.NaN()),
			Entry("+Inf", math.Inf(1)),
		)

		It("keeps a lone particle still without gravity", func() {
			w := mustWorld(quietParams())
			Expect(w.AddParticle(42, 57, 1)).To(Succeed())
			for i := 0; i < 500; i++ {
				Expect(w.Step(0.01)).To(Succeed())
			}
			p := w.Particles()[0]
			Expect(p.Position.X).To(BeNumerically("~", 42, 1e-12))
			Expect(p.Position.Y).To(BeNumerically("~", 57, 1e-12))
		})

		It("pushes a close pair apart and lets gravity act on y", func() {
			w := New()
			Expect(w.AddParticle(50, 50, 1)).To(Succeed())
			Expect(w.AddParticle(52, 50, 1)).To(Succeed())
			dt := 0.01
			Expect(w.Step(dt)).To(Succeed())

			ps := w.Particles()
			Expect(ps[1].Position.X - ps[0].Position.X).To(BeNumerically(">", 2))
			Expect(ps[0].Position.X).To(BeNumerically("<", 50))
			Expect(ps[1].Position.X).To(BeNumerically(">", 52))
			for _, p := range ps {
				Expect(p.Position.Y - 50).To(BeNumerically("~", -Gravity*dt*dt, 1e-12))
			}
		})

		It("handles coincident particles without producing NaN", func() {
			w := New()
			for i := 0; i < 3; i++ {
				Expect(w.AddParticle(50, 50, 1)).To(Succeed())
			}
			for i := 0; i < 10; i++ {
				Expect(w.Step(0.01)).To(Succeed())
			}
			for _, p := range w.Particles() {
				Expect(p.Position.IsFinite()).To(BeTrue())
				Expect(p.Velocity.IsFinite()).To(BeTrue())
			}
		})

		It("keeps every particle inside the walls", func() {
			w := New()
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 200; i++ {
				Expect(w.AddParticle(rng.Float64()*100, rng.Float64()*100, 0.75+rng.Float64()*0.25)).To(Succeed())
			}
			lo, hi := ParticleRadius, WorldWidth-ParticleRadius
			for step := 0; step < 300; step++ {
				Expect(w.Step(0.01)).To(Succeed())
				for _, p := range w.Particles() {
					Expect(p.Position.X).To(BeNumerically(">=", lo))
					Expect(p.Position.X).To(BeNumerically("<=", hi))
					Expect(p.Position.Y).To(BeNumerically(">=", lo))
					Expect(p.Position.Y).To(BeNumerically("<=", hi))
				}
			}
		})
	})

	Describe("double density relaxation", func() {
		It("conserves momentum for unequal masses", func() {
			w := mustWorld(quietParams())
			Expect(w.AddParticle(50, 50, 1)).To(Succeed())
			Expect(w.AddParticle(53, 50.5, 3)).To(Succeed())
			Expect(w.Step(0.01)).To(Succeed())

			m := momentum(w)
			Expect(m.X).To(BeNumerically("~", 0, 1e-12))
			Expect(m.Y).To(BeNumerically("~", 0, 1e-12))

			ps := w.Particles()
			shift := ps[0].Position.Sub(Vec2{X: 50, Y: 50}).Scale(ps[0].Mass).
				Add(ps[1].Position.Sub(Vec2{X: 53, Y: 50.5}).Scale(ps[1].Mass))
			Expect(shift.Len()).To(BeNumerically("<", 1e-12))
		})

		It("conserves momentum inside a cluster", func() {
			w := mustWorld(quietParams())
			for y := 0; y < 6; y++ {
				for x := 0; x < 6; x++ {
					Expect(w.AddParticle(40+float64(x)*1.7, 40+float64(y)*1.9, 1)).To(Succeed())
				}
			}
			for i := 0; i < 5; i++ {
				Expect(w.Step(0.01)).To(Succeed())
			}
			Expect(momentum(w).Len()).To(BeNumerically("<", 1e-9))
		})

		It("roughly doubles the correction when pairs are visited twice", func() {
			separation := func(pairs PairPolicy) float64 {
				p := quietParams()
				p.Options.Pairs = pairs
				w := mustWorld(p)
				Expect(w.AddParticle(50, 50, 1)).To(Succeed())
				Expect(w.AddParticle(52, 50, 1)).To(Succeed())
				Expect(w.Step(0.01)).To(Succeed())
				ps := w.Particles()
				return ps[1].Position.X - ps[0].Position.X - 2
			}
			unique, double := separation(UniquePairs), separation(DoubleVisit)
			Expect(unique).To(BeNumerically(">", 0))
			Expect(double / unique).To(BeNumerically(">", 1.9))
			Expect(double / unique).To(BeNumerically("<=", 2.0))
		})

		It("ignores pairs split across cells under the same-cell search", func() {
			p := quietParams()
			p.Options.Neighborhood = SameCell
			w := mustWorld(p)
			edge := p.CellSize
			Expect(w.AddParticle(edge-0.5, 50, 1)).To(Succeed())
			Expect(w.AddParticle(edge+0.5, 50, 1)).To(Succeed())
			Expect(w.Step(0.01)).To(Succeed())
			ps := w.Particles()
			Expect(ps[0].Position.X).To(Equal(edge - 0.5))
			Expect(ps[1].Position.X).To(Equal(edge + 0.5))

			p.Options.Neighborhood = Moore
			w = mustWorld(p)
			Expect(w.AddParticle(edge-0.5, 50, 1)).To(Succeed())
			Expect(w.AddParticle(edge+0.5, 50, 1)).To(Succeed())
			Expect(w.Step(0.01)).To(Succeed())
			ps = w.Particles()
			Expect(ps[1].Position.X - ps[0].Position.X).To(BeNumerically(">", 1))
		})
	})

	Describe("viscosity", func() {
		approach := func(policy ViscosityPolicy) []ParticleState {
			p := quietParams()
			p.Stiffness, p.StiffnessNear = 0, 0
			p.ViscosityLinear, p.ViscosityQuad = 2, 0.1
			p.Options.Viscosity = policy
			w := mustWorld(p)
			Expect(w.AddParticle(50, 50, 1)).To(Succeed())
			Expect(w.AddParticle(53, 50, 1)).To(Succeed())
			w.particles[0].Velocity = Vec2{X: 5}
			w.particles[1].Velocity = Vec2{X: -5}
			Expect(w.Step(0.01)).To(Succeed())
			return w.Particles()
		}

		It("damps approaching pairs symmetrically by default", func() {
			ps := approach(ViscositySymmetric)
			Expect(ps[0].Velocity.X).To(BeNumerically("<", 5))
			Expect(ps[1].Velocity.X).To(BeNumerically(">", -5))
			Expect(ps[0].Velocity.X + ps[1].Velocity.X).To(BeNumerically("~", 0, 1e-12))
		})

		It("only touches the lower index under the reference policy", func() {
			ps := approach(ViscosityLowerIndex)
			Expect(ps[0].Velocity.X).To(BeNumerically("<", 5))
			Expect(ps[1].Velocity.X).To(Equal(-5.0))
		})
	})

	Describe("walls", func() {
		It("reflects and damps a particle hitting the floor", func() {
			w := mustWorld(quietParams())
			Expect(w.AddParticle(50, 1.05, 1)).To(Succeed())
			w.particles[0].Velocity = Vec2{Y: -10}
			Expect(w.Step(0.01)).To(Succeed())
			p := w.Particles()[0]
			Expect(p.Position.Y).To(Equal(ParticleRadius))
			Expect(p.Velocity.Y).To(BeNumerically("~", 10*BoundaryCOR, 1e-12))
		})

		It("nudges a particle resting on the floor inward", func() {
			w := mustWorld(quietParams())
			Expect(w.AddParticle(50, ParticleRadius, 1)).To(Succeed())
			Expect(w.Step(0.01)).To(Succeed())
			Expect(w.Particles()[0].Velocity.Y).To(Equal(BoundaryMinDV))
		})

		DescribeTable("corner precedence",
			func(walls WallPolicy, wantY float64) {
				p := quietParams()
				p.Options.Walls = walls
				w := mustWorld(p)
				Expect(w.AddParticle(-5, -5, 1)).To(Succeed())
				Expect(w.Step(0.01)).To(Succeed())
				pos := w.Particles()[0].Position
				Expect(pos.X).To(Equal(ParticleRadius))
				Expect(pos.Y).To(Equal(wantY))
			},
			Entry("per axis fixes both", WallsPerAxis, ParticleRadius),
			Entry("first match fixes x only", WallsFirstMatch, -5.0),
		)
	})

	Describe("grid rebuild policy", func() {
		DescribeTable("cell used by relaxation",
			func(rebuild RebuildPolicy, wantCell Cell) {
				p := quietParams()
				p.Options.Rebuild = rebuild
				w := mustWorld(p)
				Expect(w.AddParticle(p.CellSize-0.01, 50, 1)).To(Succeed())
				w.particles[0].Velocity = Vec2{X: 10}
				Expect(w.Step(0.01)).To(Succeed())
				Expect(w.grid.CellOf(0)).To(Equal(wantCell))
			},
			Entry("per step stays on the pre-move cell", RebuildPerStep, Cell{X: 0, Y: 1}),
			Entry("per pass follows the particle", RebuildPerPass, Cell{X: 1, Y: 1}),
		)
	})

	Describe("parameters", func() {
		It("exposes and updates tunables", func() {
			w := New()
			Expect(w.GetParams()).To(HaveKeyWithValue("gravity", Gravity))
			Expect(w.SetParam("gravity", 3)).To(Succeed())
			Expect(w.Params().Gravity).To(Equal(3.0))
			Expect(w.SetParam("warp", 1)).To(MatchError(ErrInvalidParams))
			Expect(w.SetParam("stiffness", -1)).To(MatchError(ErrInvalidParams))
			Expect(w.Params().Stiffness).To(Equal(Stiffness))
		})

		It("rejects a Moore cell smaller than the interaction radius", func() {
			p := DefaultParams()
			p.CellSize = p.InteractionRadius / 2
			_, err := NewWorld(p)
			Expect(err).To(MatchError(ErrInvalidParams))

			p.Options.Neighborhood = SameCell
			_, err = NewWorld(p)
			Expect(err).NotTo(HaveOccurred())
		})

		It("resizes the grid when the cell size changes", func() {
			w := New()
			p := w.Params()
			p.CellSize = 12
			Expect(w.SetParams(p)).To(Succeed())
			Expect(w.grid.CellSize()).To(Equal(12.0))
		})
	})
})
