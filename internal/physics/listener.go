package physics

// Contact listeners. A value passed to Shape.AddListener may implement any
// subset of these; each implemented method is registered once.

type BeginHitListener interface {
	OnBeginHit(other *Shape, hit HitResult)
}

type HitListener interface {
	OnHit(other *Shape, hit HitResult)
}

type EndHitListener interface {
	OnEndHit(other *Shape, hit HitResult)
}

type BeginOverlapListener interface {
	OnBeginOverlap(other *Shape, hit HitResult)
}

type OverlapListener interface {
	OnOverlap(other *Shape, hit HitResult)
}

type EndOverlapListener interface {
	OnEndOverlap(other *Shape, hit HitResult)
}

// ListenerFuncs adapts plain functions to every listener interface. Nil
// fields are ignored.
type ListenerFuncs struct {
	BeginHit     func(other *Shape, hit HitResult)
	Hit          func(other *Shape, hit HitResult)
	EndHit       func(other *Shape, hit HitResult)
	BeginOverlap func(other *Shape, hit HitResult)
	Overlap      func(other *Shape, hit HitResult)
	EndOverlap   func(other *Shape, hit HitResult)
}

func (f ListenerFuncs) OnBeginHit(o *Shape, h HitResult) { call(f.BeginHit, o, h) }
func (f ListenerFuncs) OnHit(o *Shape, h HitResult)      { call(f.Hit, o, h) }
func (f ListenerFuncs) OnEndHit(o *Shape, h HitResult)   { call(f.EndHit, o, h) }

func (f ListenerFuncs) OnBeginOverlap(o *Shape, h HitResult) { call(f.BeginOverlap, o, h) }
func (f ListenerFuncs) OnOverlap(o *Shape, h HitResult)      { call(f.Overlap, o, h) }
func (f ListenerFuncs) OnEndOverlap(o *Shape, h HitResult)   { call(f.EndOverlap, o, h) }

func call(fn func(*Shape, HitResult), o *Shape, h HitResult) {
	if fn != nil {
		fn(o, h)
	}
}

type listenerSet struct {
	beginHits     []BeginHitListener
	hits          []HitListener
	endHits       []EndHitListener
	beginOverlaps []BeginOverlapListener
	overlaps      []OverlapListener
	endOverlaps   []EndOverlapListener
}

// AddListener registers l for every listener interface it implements and
// reports whether it implemented at least one.
func (s *Shape) AddListener(l any) bool {
	ls := &s.listeners
	n := 0
	if v, ok := l.(BeginHitListener); ok {
		ls.beginHits = append(ls.beginHits, v)
		n++
	}
	if v, ok := l.(HitListener); ok {
		ls.hits = append(ls.hits, v)
		n++
	}
	if v, ok := l.(EndHitListener); ok {
		ls.endHits = append(ls.endHits, v)
		n++
	}
	if v, ok := l.(BeginOverlapListener); ok {
		ls.beginOverlaps = append(ls.beginOverlaps, v)
		n++
	}
	if v, ok := l.(OverlapListener); ok {
		ls.overlaps = append(ls.overlaps, v)
		n++
	}
	if v, ok := l.(EndOverlapListener); ok {
		ls.endOverlaps = append(ls.endOverlaps, v)
		n++
	}
	return n > 0
}

func (ls *listenerSet) beginHit(o *Shape, h HitResult) {
	for _, l := range ls.beginHits {
		l.OnBeginHit(o, h)
	}
}

func (ls *listenerSet) hit(o *Shape, h HitResult) {
	for _, l := range ls.hits {
		l.OnHit(o, h)
	}
}

func (ls *listenerSet) endHit(o *Shape, h HitResult) {
	for _, l := range ls.endHits {
		l.OnEndHit(o, h)
	}
}

func (ls *listenerSet) beginOverlap(o *Shape, h HitResult) {
	for _, l := range ls.beginOverlaps {
		l.OnBeginOverlap(o, h)
	}
}

func (ls *listenerSet) overlap(o *Shape, h HitResult) {
	for _, l := range ls.overlaps {
		l.OnOverlap(o, h)
	}
}

func (ls *listenerSet) endOverlap(o *Shape, h HitResult) {
	for _, l := range ls.endOverlaps {
		l.OnEndOverlap(o, h)
	}
}
