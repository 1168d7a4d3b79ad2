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
Package checker implements checking mechanism of server aliveness.
It is used by server to determine if internal health if good and work can be continued
*/
package checker

import (
	"errors"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var (
	errSimpleCheckerWrongAmountListeners = errors.New("wrong amount of listeners is up")
	errSimpleCheckerWrongAmountWorkers   = errors.New("wrong amount of workers is up")
	errSimpleCheckerWrongAmountSerial    = errors.New("wrong amount of serial readers is up")
)

// SimpleChecker is an implementation of checker containing basic health info such as
// amount of workers, listeners and serial readers
type SimpleChecker struct {
	// ExpectedListeners is number of listeners we expect to run
	ExpectedListeners int64
	realListeners     int64

	// ExpectedWorkers is number of workers we expect to run
	ExpectedWorkers int64
	realWorkers     int64

	// ExpectedSerial is number of serial readers we expect to run
	ExpectedSerial int64
	realSerial     int64
}

// IncListeners thread-safely increases number of listeners to monitor
func (s *SimpleChecker) IncListeners() {
	atomic.AddInt64(&s.realListeners, 1)
}

// DecListeners thread-safely decreases number of listeners to monitor
func (s *SimpleChecker) DecListeners() {
	atomic.AddInt64(&s.realListeners, -1)
}

// IncWorkers thread-safely increases number of workers to monitor
func (s *SimpleChecker) IncWorkers() {
	atomic.AddInt64(&s.realWorkers, 1)
}

// DecWorkers thread-safely decreases number of workers to monitor
func (s *SimpleChecker) DecWorkers() {
	atomic.AddInt64(&s.realWorkers, -1)
}

// IncSerial thread-safely increases number of serial readers to monitor
func (s *SimpleChecker) IncSerial() {
	atomic.AddInt64(&s.realSerial, 1)
}

// DecSerial thread-safely decreases number of serial readers to monitor
func (s *SimpleChecker) DecSerial() {
	atomic.AddInt64(&s.realSerial, -1)
}

// Check is a method which performs basic validations that responder is alive
func (s *SimpleChecker) Check() error {
	if err := s.checkListeners(); err != nil {
		return err
	}
	if err := s.checkWorkers(); err != nil {
		return err
	}
	if err := s.checkSerial(); err != nil {
		return err
	}
	return nil
}

// checkListeners checks if all ExpectedListeners are alive
func (s *SimpleChecker) checkListeners() error {
	log.Debug("[Checker] checking listeners")
	if s.ExpectedListeners != s.realListeners {
		return errSimpleCheckerWrongAmountListeners
	}
	return nil
}

// checkWorkers checks if all ExpectedWorkers are alive
func (s *SimpleChecker) checkWorkers() error {
	log.Debug("[Checker] checking workers")
	if s.ExpectedWorkers != s.realWorkers {
		return errSimpleCheckerWrongAmountWorkers
	}
	return nil
}

// checkSerial checks if all ExpectedSerial readers are alive
func (s *SimpleChecker) checkSerial() error {
	log.Debug("[Checker] checking serial readers")
	if s.ExpectedSerial != s.realSerial {
		return errSimpleCheckerWrongAmountSerial
	}
	return nil
}
