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
Package gpsserial reads line-oriented NMEA sentences off a serial GPS
receiver and latches decoded UTC instants into a gpsref.Ref.
*/
package gpsserial

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/gpsntp/gpsntpd/gpsref"
	"github.com/gpsntp/gpsntpd/nmea"
)

// Checker is the subset of checker.SimpleChecker the reader reports its
// liveness through.
type Checker interface {
	IncSerial()
	DecSerial()
}

// Stats is the subset of stats.JSONStats the reader increments.
type Stats interface {
	IncSerialReads()
	IncChecksumFailure()
	IncDecodeFailure()
}

// Reader continuously reads NMEA sentences of a configured type off a
// serial port and feeds decoded UTC instants into a gpsref.Ref.
type Reader struct {
	Port    string
	Baud    int
	Kind    nmea.SentenceType
	Ref     *gpsref.Ref
	Checker Checker
	Stats   Stats

	open func(portName string, mode *serial.Mode) (serial.Port, error)
}

// New returns a Reader ready to Run that opens its port with
// go.bug.st/serial.Open; tests replace the unexported open field with a
// fake to avoid touching real hardware.
func New(port string, baud int, kind nmea.SentenceType, ref *gpsref.Ref, checker Checker, stats Stats) *Reader {
	return &Reader{
		Port:    port,
		Baud:    baud,
		Kind:    kind,
		Ref:     ref,
		Checker: checker,
		Stats:   stats,
		open:    serial.Open,
	}
}

// Run opens the serial port and reads lines from it until ctx is
// canceled or a read fails with anything other than an EOF that carried
// no data (such an EOF is retried; an EOF after a partial line is
// returned). It never returns nil
// other than on context cancellation.
func (r *Reader) Run(ctx context.Context) error {
	mode := &serial.Mode{BaudRate: r.Baud}
	port, err := r.open(r.Port, mode)
	if err != nil {
		return err
	}
	defer port.Close()

	r.Checker.IncSerial()
	defer r.Checker.DecSerial()

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		port.Close()
		close(done)
	}()

	reader := bufio.NewReader(port)
	prefix := r.Kind.Prefix()
	for {
		monoBeforeRead := time.Now()
		line, err := reader.ReadString('\n')
		if err != nil {
			select {
			case <-ctx.Done():
				<-done
				return nil
			default:
			}
			if err == io.EOF && line == "" {
				continue
			}
			log.Warnf("[gpsserial] read error on %s: %v", r.Port, err)
			return err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		r.Stats.IncSerialReads()
		if !nmea.Checksum(line) {
			log.Debugf("[gpsserial] checksum failure: %q", line)
			r.Stats.IncChecksumFailure()
			continue
		}
		utc := nmea.Decode(line, r.Kind)
		if utc == 0 {
			log.Debugf("[gpsserial] failed to decode sentence: %q", line)
			r.Stats.IncDecodeFailure()
			continue
		}
		r.Ref.Set(utc, monoBeforeRead)
	}
}
