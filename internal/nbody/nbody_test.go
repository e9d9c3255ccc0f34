package nbody

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

const tol = 1e-9

func directSum(records []Record, i int) dynamo.Vec {
	var a dynamo.Vec
	for j, r := range records {
		if j == i || r.Mu == 0 {
			continue
		}
		d := r.Position.Sub(records[i].Position)
		l := d.Len()
		a = a.Add(d.Mul(r.Mu / (l * l * l)))
	}
	return a
}

func TestTestBodyFeelsMassiveBody(t *testing.T) {
	reg := NewRegistry(1)
	reg.Add(Record{Position: dynamo.V2(0, 0), Mu: 100})
	reg.Add(Record{Position: dynamo.V2(10, 0), Mu: 0})

	res := NewDirectSum(0, 1).Accumulate(reg)
	require.Len(t, res, 2)

	assert.Equal(t, dynamo.Vec{}, res[0].Acceleration, "massive body must not feel the test body")
	assert.InDelta(t, -1.0, res[1].Acceleration.X(), tol)
	assert.InDelta(t, 0.0, res[1].Acceleration.Y(), tol)
	assert.InDelta(t, 1.0, res[1].Acceleration.Len(), tol)
}

func TestPairIsSymmetric(t *testing.T) {
	reg := NewRegistry(1)
	reg.Add(Record{Position: dynamo.Vec{1, 2, 3}, Mu: 50})
	reg.Add(Record{Position: dynamo.Vec{-4, 0, 1}, Mu: 20})

	res := NewDirectSum(0, 1).Accumulate(reg)
	f1 := res[0].Acceleration.Mul(50)
	f2 := res[1].Acceleration.Mul(20)

	for k := 0; k < 3; k++ {
		assert.InDelta(t, -f1[k], f2[k], tol)
	}
}

func TestMatchesDirectFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	reg := NewRegistry(1000)
	for i := 0; i < 40; i++ {
		mu := 0.0
		if i%3 != 0 {
			mu = rng.Float64() * 1e4
		}
		reg.Add(Record{Position: dynamo.Vec{rng.NormFloat64() * 100, rng.NormFloat64() * 100, 0}, Mu: mu})
	}

	res := NewDirectSum(0, 1).Accumulate(reg)
	for i, r := range res {
		want := directSum(reg.Records(), i)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, want[k], r.Acceleration[k], 1e-9*(1+math.Abs(want[k])), "record %d axis %d", i, k)
		}
	}
}

func TestSofteningPolicy(t *testing.T) {
	t.Run("coincident pair without softening", func(t *testing.T) {
		reg := NewRegistry(1)
		reg.Add(Record{Position: dynamo.V2(3, 3), Mu: 10})
		reg.Add(Record{Position: dynamo.V2(3, 3), Mu: 10})

		acc := NewDirectSum(0, 1)
		res := acc.Accumulate(reg)
		for _, r := range res {
			assert.True(t, dynamo.IsFinite(r.Acceleration))
			assert.Equal(t, dynamo.Vec{}, r.Acceleration)
		}
		assert.Equal(t, 2, acc.Degenerate())
	})

	t.Run("softened coincident pair", func(t *testing.T) {
		reg := NewRegistry(1)
		reg.Add(Record{Position: dynamo.V2(3, 3), Mu: 10})
		reg.Add(Record{Position: dynamo.V2(3, 3), Mu: 10})

		acc := NewDirectSum(0.01, 1)
		for _, r := range acc.Accumulate(reg) {
			assert.True(t, dynamo.IsFinite(r.Acceleration))
		}
		assert.Zero(t, acc.Degenerate())
	})

	t.Run("non-finite input is zeroed", func(t *testing.T) {
		reg := NewRegistry(1)
		reg.Add(Record{Position: dynamo.V2(math.Inf(1), 0), Mu: 10})
		reg.Add(Record{Position: dynamo.V2(0, 0), Mu: 10})

		acc := NewDirectSum(0.01, 1)
		for _, r := range acc.Accumulate(reg) {
			assert.True(t, dynamo.IsFinite(r.Acceleration))
		}
		assert.Positive(t, acc.Degenerate())
	})
}

func TestParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	reg := NewRegistry(1)
	for i := 0; i < 500; i++ {
		reg.Add(Record{Position: dynamo.Vec{rng.Float64() * 1000, rng.Float64() * 1000, 0}, Mu: rng.Float64()})
	}

	serial := NewDirectSum(0.01, 1).Accumulate(reg)
	par := &DirectSum{Softening: 0.01, Workers: 8, MinChunk: 16}
	assert.Equal(t, serial, par.Accumulate(reg))
}

func TestRebuildTracksWorld(t *testing.T) {
	w := world.New()
	root := w.NewRoot("test")
	heavy, err := w.Spawn(root, world.BodySpec{Mass: world.HasGravity(2)})
	require.NoError(t, err)
	light, err := w.Spawn(root, world.BodySpec{Position: dynamo.V2(5, 0), Mass: world.AffectedByGravity()})
	require.NoError(t, err)

	reg := NewRegistry(1000)
	reg.Rebuild(w)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 1, reg.Massive())

	for _, rec := range reg.Records() {
		switch rec.Entity {
		case heavy:
			assert.Equal(t, 2000.0, rec.Mu)
		case light:
			assert.Zero(t, rec.Mu)
		default:
			t.Fatalf("unexpected record %v", rec.Entity)
		}
	}

	w.Despawn(heavy)
	reg.Rebuild(w)
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, light, reg.Records()[0].Entity)
	assert.Zero(t, reg.Massive())
}

func TestWritebackSkipsStale(t *testing.T) {
	w := world.New()
	root := w.NewRoot("test")
	a, _ := w.Spawn(root, world.BodySpec{Mass: world.HasGravity(1)})
	b, _ := w.Spawn(root, world.BodySpec{Position: dynamo.V2(1, 0), Mass: world.HasGravity(1)})

	reg := NewRegistry(1)
	reg.Rebuild(w)
	results := NewDirectSum(0, 1).Accumulate(reg)

	w.Despawn(b)
	applied, stale := Writeback(w, results)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, stale)

	body, ok := w.Body(a)
	require.True(t, ok)
	assert.InDelta(t, 1.0, body.Acceleration.X(), tol)

	applied, _ = Writeback(w, results)
	assert.Equal(t, 1, applied)
	body, _ = w.Body(a)
	assert.InDelta(t, 1.0, body.Acceleration.X(), tol, "writeback overwrites, never adds")
}

func BenchmarkDirectSum(b *testing.B) {
	for _, n := range []int{100, 1000} {
		rng := rand.New(rand.NewSource(1))
		reg := NewRegistry(1)
		for i := 0; i < n; i++ {
			reg.Add(Record{Position: dynamo.Vec{rng.Float64(), rng.Float64(), 0}, Mu: 1})
		}
		acc := NewDirectSum(0.01, 0)

		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				acc.Accumulate(reg)
			}
		})
	}
}
