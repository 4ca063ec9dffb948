// Package location exposes the device position to the attendance pipeline
// as "latest known fix or absent". The pipeline never blocks waiting for a
// fix to appear.
package location

import (
	"sync"
	"time"
)

// GeoFix is a single timestamped position reading.
type GeoFix struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// Provider supplies the most recent fix. The boolean is false until the
// first reading arrives.
type Provider interface {
	Latest() (GeoFix, bool)
}

var _ Provider = (*Feed)(nil)

// Feed is a continuously updatable position source. Whatever pushes
// readings (a platform location service, a CLI flag, a test) calls Update;
// readers only ever see the most recent fix.
type Feed struct {
	lock sync.RWMutex
	fix  GeoFix
	set  bool
}

func NewFeed() *Feed {
	return &Feed{}
}

// NewStatic returns a feed pre-loaded with a fixed position, stamped now.
func NewStatic(latitude, longitude float64) *Feed {
	f := NewFeed()
	f.Update(GeoFix{Latitude: latitude, Longitude: longitude, Timestamp: time.Now()})
	return f
}

func (f *Feed) Update(fix GeoFix) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.fix = fix
	f.set = true
}

func (f *Feed) Latest() (GeoFix, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.fix, f.set
}
