package commander

import (
	"github.com/five82/uberlog/internal/source"
)

// registry keeps sources in registration order. IDs are never reused.
type registry struct {
	sources []source.Source
	lastID  uint32
	stdin   *source.Stdin
}

func (r *registry) nextID() uint32 {
	r.lastID++
	return r.lastID
}

func (r *registry) add(src source.Source) {
	r.sources = append(r.sources, src)
	if s, ok := src.(*source.Stdin); ok {
		r.stdin = s
	}
}

func (r *registry) get(id uint32) source.Source {
	for _, src := range r.sources {
		if src.ID() == id {
			return src
		}
	}
	return nil
}

func (r *registry) bySerial(serial string) source.Source {
	for _, src := range r.sources {
		if src.ProbeSerial() == serial {
			return src
		}
	}
	return nil
}

func (r *registry) drop(id uint32) source.Source {
	for i, src := range r.sources {
		if src.ID() != id {
			continue
		}
		r.sources = append(r.sources[:i], r.sources[i+1:]...)
		if r.stdin != nil && r.stdin.ID() == id {
			r.stdin = nil
		}
		return src
	}
	return nil
}

// all returns a snapshot safe to iterate while the registry changes.
func (r *registry) all() []source.Source {
	return append([]source.Source(nil), r.sources...)
}
