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
Package server implements the UDP half of the responder: a bounded
work queue between a single receive loop and a pool of worker
goroutines that answer from the shared GPS time reference.
*/
package server

import (
	"context"
	"errors"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gpsntp/gpsntpd/gpsref"
	ntp "github.com/gpsntp/gpsntpd/ntp/protocol"
)

// task is everything a worker needs to answer one request.
type task struct {
	addr    *net.UDPAddr
	rxMono  time.Time
	request *ntp.Packet
}

// Server answers NTP requests over UDP using Ref as its time source.
type Server struct {
	Config  Config
	Stats   Stats
	Checker Checker
	Ref     *gpsref.Ref

	conn  *net.UDPConn
	tasks chan task
}

// Start launches the receive loop and worker pool. Workers exit when ctx
// is canceled; the receive loop exits when Stop closes the socket.
// A Checker failure invokes cancelFunc so the caller can shut the
// whole process down.
func (s *Server) Start(ctx context.Context, cancelFunc context.CancelFunc) error {
	addr, err := net.ResolveUDPAddr("udp", s.Config.BindAddress)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	s.conn = conn

	s.tasks = make(chan task, queueDepth)

	log.Infof("Creating %d worker(s)", s.Config.Workers)
	for i := 0; i < s.Config.Workers; i++ {
		go s.startWorker(ctx)
	}

	log.Infof("Listening on %s", s.Config.BindAddress)
	go s.startListener(ctx, conn)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Minute):
				log.Debug("[Checker] running internal health checks")
				if err := s.Checker.Check(); err != nil {
					log.Errorf("[Checker] internal error: %v", err)
					cancelFunc()
					return
				}
			}
		}
	}()

	return nil
}

// Stop closes the listening socket, unblocking the receive loop.
func (s *Server) Stop() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Server) startListener(ctx context.Context, conn *net.UDPConn) {
	s.Checker.IncListeners()
	s.Stats.IncListeners()
	defer s.Checker.DecListeners()
	defer s.Stats.DecListeners()

	for {
		request, addr, err := ntp.ReadNTPPacket(conn)
		rxMono := time.Now()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Warning("listener connection closed, exiting listener")
				return
			}
			log.Debugf("failed to read packet on %s: %v", conn.LocalAddr(), err)
			s.Stats.IncReadError()
			continue
		}
		s.Stats.IncRequests()
		s.enqueue(task{addr: addr, rxMono: rxMono, request: request})
	}
}

// enqueue implements the bounded queue's oldest-drop-on-overflow
// policy: if the channel is full, the oldest pending task is
// discarded to make room for the new one.
func (s *Server) enqueue(t task) {
	select {
	case s.tasks <- t:
		return
	default:
	}
	select {
	case <-s.tasks:
	default:
	}
	select {
	case s.tasks <- t:
	default:
	}
}

func (s *Server) startWorker(ctx context.Context) {
	s.Checker.IncWorkers()
	s.Stats.IncWorkers()
	defer s.Checker.DecWorkers()
	defer s.Stats.DecWorkers()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.tasks:
			s.serve(t)
		}
	}
}

// serve validates the request, samples the GPS time reference and
// writes a reply.
func (s *Server) serve(t task) {
	if !t.request.ValidForReply() {
		log.Debugf("invalid query, discarding: %+v", t.request)
		s.Stats.IncInvalidFormat()
		return
	}

	rxUTC := s.Ref.At(t.rxMono)
	nowUTC, refUTC, rootDelay := s.Ref.Sample()

	response := ntp.EmitReply(t.request, rxUTC, refUTC, rootDelay, s.Config.SerialError, s.Config.Poll, nowUTC)
	responseBytes, err := response.Bytes()
	if err != nil {
		log.Errorf("failed to serialize response: %v", err)
		return
	}

	if _, err := s.conn.WriteToUDP(responseBytes, t.addr); err != nil {
		log.Debugf("failed to respond to %s: %v", t.addr, err)
		return
	}
	s.Stats.IncResponses()
}
