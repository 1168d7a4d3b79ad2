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

package protocol

import "math"

// UTCToNTPEpoch is the number of seconds between the NTP epoch
// (1900-01-01T00:00:00Z) and the Unix epoch (1970-01-01T00:00:00Z).
const UTCToNTPEpoch = 2208988800

// Time converts a UTC instant, expressed as floating-point seconds since
// the Unix epoch, into the NTP 32.32 fixed-point sec/frac pair written on
// the wire. Integer and fractional parts are computed separately as
// integers, per the fixed-point rule the rest of this package follows:
// floats lose precision once shifted by 32 bits.
func Time(utc float64) (seconds uint32, fraction uint32) {
	intPart := math.Floor(utc)
	fracPart := math.Floor(math.Abs(utc-intPart) * (1 << 32))
	return uint32(int64(intPart) + UTCToNTPEpoch), uint32(fracPart)
}

// Unix is the inverse of Time: it recovers a UTC instant, as
// floating-point seconds since the Unix epoch, from an NTP sec/frac pair.
func Unix(seconds, fraction uint32) float64 {
	return float64(int64(seconds)-UTCToNTPEpoch) + float64(fraction)/(1<<32)
}
