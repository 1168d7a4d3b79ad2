/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package gpsref holds the single time reference cell the responder reads
on every request: a UTC instant derived from the last decoded NMEA
sentence, anchored to a monotonic tick, plus the measured serial
transport delay published as NTP root delay.
*/
package gpsref

import (
	"sync"
	"time"
)

// Ref is a mutex-guarded mapping from a monotonic tick to a UTC instant.
// It is mutated only by the serial reader and read by every request
// handler; the zero value is the uninitialized state (no GPS epoch seen
// yet).
type Ref struct {
	sync.Mutex

	configuredSerialDelay float64

	gpsUTC     float64
	anchorMono time.Time
	rootDelay  float64
}

// New returns a Ref that folds configuredSerialDelay, the mean one-way
// serial transport delay measured by the setup collaborator, into every
// subsequent Set.
func New(configuredSerialDelay float64) *Ref {
	return &Ref{configuredSerialDelay: configuredSerialDelay}
}

// Set latches a newly-decoded GPS UTC instant. utc == 0 is the sentinel
// nmea.Decode uses for a failed decode and is a no-op: the previous
// state, if any, is left untouched. monoBeforeRead must be the
// monotonic tick captured immediately before the serial line carrying
// this sentence was read.
func (r *Ref) Set(utc float64, monoBeforeRead time.Time) {
	if utc == 0 {
		return
	}
	anchor := time.Now()
	r.Lock()
	defer r.Unlock()
	r.gpsUTC = utc
	r.anchorMono = anchor
	r.rootDelay = anchor.Sub(monoBeforeRead).Seconds() + r.configuredSerialDelay
}

// Sample returns the server's current best estimate of UTC, the UTC
// instant of the last GPS epoch used as reference, and the currently
// published root delay. Before the first Set, all three are zero.
func (r *Ref) Sample() (currentUTC, referenceUTC, rootDelay float64) {
	r.Lock()
	defer r.Unlock()
	if r.anchorMono.IsZero() {
		return r.rootDelay, r.gpsUTC, r.rootDelay
	}
	elapsed := time.Since(r.anchorMono).Seconds()
	return r.gpsUTC + elapsed + r.rootDelay, r.gpsUTC, r.rootDelay
}

// At projects an arbitrary instant t (typically a request's receive
// time, captured earlier than "now") onto the same UTC estimate Sample
// would have returned at that instant. Before the first Set it returns
// zero, same as Sample.
func (r *Ref) At(t time.Time) float64 {
	r.Lock()
	defer r.Unlock()
	if r.anchorMono.IsZero() {
		return r.rootDelay
	}
	elapsed := t.Sub(r.anchorMono).Seconds()
	return r.gpsUTC + elapsed + r.rootDelay
}
