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
Package config loads the key=value file written by the one-shot `setup`
utility: the serial port and baud rate it probed, the NMEA sentence type
it found, the mean serial delay and half-range error it measured over a
loopback, the bind address and the advertised poll interval. None of
these are re-derived on the hot path.
*/
package config

import (
	"fmt"

	"github.com/go-ini/ini"
	"github.com/gpsntp/gpsntpd/nmea"
)

// Config is the responder's full runtime configuration, as written by
// `setup` into a key=value file with no section headers.
type Config struct {
	SerialPort  string
	SerialBaud  int
	SerialDelay float64
	SerialError float64
	NMEAType    nmea.SentenceType
	BindAddress string
	Poll        int8
}

// Load reads and validates the config file at path. Every key is
// required; a missing key or an unparseable value is a fatal
// configuration error, since this is only ever read once at startup.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	s := f.Section("")

	c := &Config{}

	c.SerialPort, err = requiredString(s, "SERIAL_PORT")
	if err != nil {
		return nil, err
	}

	c.SerialBaud, err = requiredInt(s, "SERIAL_BAUD")
	if err != nil {
		return nil, err
	}

	c.SerialDelay, err = requiredFloat(s, "SERIAL_DELAY")
	if err != nil {
		return nil, err
	}

	c.SerialError, err = requiredFloat(s, "SERIAL_ERROR")
	if err != nil {
		return nil, err
	}

	nmeaType, err := requiredString(s, "NMEA_TYPE")
	if err != nil {
		return nil, err
	}
	kind, ok := nmea.ParseSentenceType(nmeaType)
	if !ok {
		return nil, fmt.Errorf("config: NMEA_TYPE must be $GPRMC or $GPZDA, got %q", nmeaType)
	}
	c.NMEAType = kind

	c.BindAddress, err = requiredString(s, "NTP_ADDRESS")
	if err != nil {
		return nil, err
	}

	poll, err := requiredInt(s, "NTP_POLL")
	if err != nil {
		return nil, err
	}
	if poll < -128 || poll > 127 {
		return nil, fmt.Errorf("config: NTP_POLL out of int8 range: %d", poll)
	}
	c.Poll = int8(poll)

	return c, nil
}

func requiredString(s *ini.Section, key string) (string, error) {
	k := s.Key(key)
	if k.String() == "" {
		return "", fmt.Errorf("config: missing required key %s", key)
	}
	return k.String(), nil
}

func requiredInt(s *ini.Section, key string) (int, error) {
	v, err := requiredString(s, key)
	if err != nil {
		return 0, err
	}
	n, err := s.Key(key).Int()
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}

func requiredFloat(s *ini.Section, key string) (float64, error) {
	v, err := requiredString(s, key)
	if err != nil {
		return 0, err
	}
	f, err := s.Key(key).Float64()
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", key, v, err)
	}
	return f, nil
}
