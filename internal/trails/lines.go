package trails

import "github.com/san-kum/gravsim/internal/dynamo"

// Segment is a timed debug line. It is dropped once Age exceeds Lifetime.
type Segment struct {
	From, To dynamo.Vec
	Lifetime float64
	Age      float64
	Coarse   bool
}

// Sink receives trail segments.
type Sink interface {
	Line(from, to dynamo.Vec, lifetime float64, coarse bool)
}

// Lines is the debug line buffer renderers read from.
type Lines struct {
	segments []Segment
}

func NewLines() *Lines {
	return &Lines{}
}

func (l *Lines) Line(from, to dynamo.Vec, lifetime float64, coarse bool) {
	l.segments = append(l.segments, Segment{From: from, To: to, Lifetime: lifetime, Coarse: coarse})
}

// Age advances every segment by dt and compacts out expired ones.
func (l *Lines) Age(dt float64) {
	kept := l.segments[:0]
	for _, s := range l.segments {
		s.Age += dt
		if s.Age <= s.Lifetime {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(l.segments); i++ {
		l.segments[i] = Segment{}
	}
	l.segments = kept
}

func (l *Lines) Clear() {
	l.segments = l.segments[:0]
}

func (l *Lines) Len() int { return len(l.segments) }

// Segments exposes the live segments; valid until the next Age or Clear.
func (l *Lines) Segments() []Segment { return l.segments }
