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

package server

import (
	"fmt"

	"github.com/gpsntp/gpsntpd/nmea"
)

// queueDepth bounds the UDP work channel: a burst of requests beyond
// this depth drops the oldest queued item rather than blocking the
// receiver loop.
const queueDepth = 1024

// Config is the responder's runtime configuration, loaded from the
// config package's key=value file plus fixed startup choices.
type Config struct {
	BindAddress string
	Workers     int

	SerialPort  string
	SerialBaud  int
	SerialDelay float64
	SerialError float64
	NMEAType    nmea.SentenceType

	Poll int8

	MonitoringPort int
}

// Validate checks if config is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("will not start without workers")
	}
	if c.BindAddress == "" {
		return fmt.Errorf("bind address must not be empty")
	}
	if c.SerialPort == "" {
		return fmt.Errorf("serial port must not be empty")
	}
	return nil
}
