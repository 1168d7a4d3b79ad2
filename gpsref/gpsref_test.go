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

package gpsref

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUninitializedSampleIsZero(t *testing.T) {
	r := New(0)
	cur, ref, delay := r.Sample()
	require.Equal(t, float64(0), cur)
	require.Equal(t, float64(0), ref)
	require.Equal(t, float64(0), delay)
}

func TestSetZeroIsNoop(t *testing.T) {
	r := New(0.001)
	r.Set(1_600_000_000, time.Now())
	_, refBefore, _ := r.Sample()

	r.Set(0, time.Now())
	_, refAfter, _ := r.Sample()

	require.Equal(t, refBefore, refAfter)
}

func TestSetThenSampleImmediately(t *testing.T) {
	r := New(0.001)
	before := time.Now()
	r.Set(1_600_000_000.0, before)

	cur, ref, delay := r.Sample()
	require.Equal(t, 1_600_000_000.0, ref)
	require.InDelta(t, 0.001, delay, 0.01)
	require.InDelta(t, 1_600_000_000.0+0.001, cur, 0.05)
}

func TestSampleIsMonotoneNonDecreasing(t *testing.T) {
	r := New(0)
	r.Set(1_600_000_000.0, time.Now())

	first, _, _ := r.Sample()
	time.Sleep(5 * time.Millisecond)
	second, _, _ := r.Sample()

	require.GreaterOrEqual(t, second, first)
}

func TestSampleElapsedMatchesMonotonicDelta(t *testing.T) {
	r := New(0)
	r.Set(1_600_000_000.0, time.Now())

	first, _, rootDelay := r.Sample()
	time.Sleep(20 * time.Millisecond)
	second, _, _ := r.Sample()

	require.InDelta(t, second-first, 0.020, 0.05)
	require.InDelta(t, 0, rootDelay, 0.01)
}

func TestAtMatchesSampleAtSameInstant(t *testing.T) {
	r := New(0)
	r.Set(1_600_000_000.0, time.Now())

	now := time.Now()
	atResult := r.At(now)
	cur, _, _ := r.Sample()
	require.InDelta(t, cur, atResult, 0.01)
}

func TestAtOfEarlierInstantIsSmaller(t *testing.T) {
	r := New(0)
	before := time.Now()
	r.Set(1_600_000_000.0, before)
	time.Sleep(10 * time.Millisecond)

	earlier := r.At(before)
	later := r.At(time.Now())
	require.Less(t, earlier, later)
}

func TestRootDelayIncludesTransportLatency(t *testing.T) {
	r := New(0.005)
	monoBeforeRead := time.Now()
	time.Sleep(10 * time.Millisecond)
	r.Set(1_600_000_000.0, monoBeforeRead)

	_, _, delay := r.Sample()
	require.InDelta(t, 0.015, delay, 0.02)
}
