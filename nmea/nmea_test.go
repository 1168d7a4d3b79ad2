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

package nmea

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	validZDA    = "$GPZDA,123519.50,15,06,2024,00,00*68"
	validRMC    = "$GPRMC,123519.00,A,4807.038,N,01131.000,E,022.4,084.4,150624,003.1,W*4F"
	corruptZDA  = "$GPZDA,123519.50,15,06,2024,00,00*00"
	noStarLine  = "$GPZDA,123519.50,15,06,2024,00,00"
	twoStarLine = "$GPZDA,123519.50*15,06,2024*68"
)

func TestChecksumValid(t *testing.T) {
	require.True(t, Checksum(validZDA))
	require.True(t, Checksum(validRMC))
}

func TestChecksumWrongDigits(t *testing.T) {
	require.False(t, Checksum(corruptZDA))
}

func TestChecksumMissingSeparator(t *testing.T) {
	require.False(t, Checksum(noStarLine))
}

func TestChecksumDuplicateSeparator(t *testing.T) {
	require.False(t, Checksum(twoStarLine))
}

func TestChecksumBadHex(t *testing.T) {
	require.False(t, Checksum("$GPZDA,1*ZZ"))
}

func TestDecodeGPZDA(t *testing.T) {
	got := Decode(validZDA, GPZDA)
	require.InDelta(t, 1_718_454_919.5, got, 0.01)
}

func TestDecodeGPRMCSameDate(t *testing.T) {
	zda := Decode(validZDA, GPZDA)
	rmc := Decode(validRMC, GPRMC)
	require.InDelta(t, zda, rmc, 0.6, "GPRMC and GPZDA for the same epoch should agree to within hundredths")
}

func TestDecodeBadChecksumReturnsZero(t *testing.T) {
	require.Equal(t, float64(0), Decode(corruptZDA, GPZDA))
}

func TestDecodeTruncatedFieldsReturnsZero(t *testing.T) {
	// valid checksum over a too-short payload
	short := "$GPRMC,A*26"
	require.True(t, Checksum(short))
	require.Equal(t, float64(0), Decode(short, GPRMC))
}

func TestParseSentenceType(t *testing.T) {
	k, ok := ParseSentenceType("$GPRMC")
	require.True(t, ok)
	require.Equal(t, GPRMC, k)

	k, ok = ParseSentenceType("$GPZDA")
	require.True(t, ok)
	require.Equal(t, GPZDA, k)

	_, ok = ParseSentenceType("$GPGGA")
	require.False(t, ok)
}

func TestPrefix(t *testing.T) {
	require.Equal(t, "$GPRMC", GPRMC.Prefix())
	require.Equal(t, "$GPZDA", GPZDA.Prefix())
}
