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

package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"

	syscall "golang.org/x/sys/unix"

	log "github.com/sirupsen/logrus"

	"github.com/gpsntp/gpsntpd/config"
	"github.com/gpsntp/gpsntpd/gpsref"
	"github.com/gpsntp/gpsntpd/gpsserial"
	"github.com/gpsntp/gpsntpd/ntp/responder/checker"
	"github.com/gpsntp/gpsntpd/ntp/responder/server"
	"github.com/gpsntp/gpsntpd/ntp/responder/stats"
)

const pprofHTTP = "localhost:6060"

func main() {
	var (
		debugger   bool
		logLevel   string
		configPath string
	)

	flag.StringVar(&logLevel, "loglevel", "info", "Set a log level. Can be: debug, info, warning, error")
	flag.StringVar(&configPath, "config", "/etc/gpsntpd.conf", "Path to the key=value config file")
	flag.BoolVar(&debugger, "pprof", false, "Enable pprof")
	workers := flag.Int("workers", runtime.NumCPU()*10, "How many UDP worker goroutines to run")
	monitoringPort := flag.Int("monitoringport", 0, "Port to run the JSON stats monitoring server on")
	flag.Parse()

	switch logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("Unrecognized log level: %v", logLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	s := server.Server{
		Config: server.Config{
			BindAddress: cfg.BindAddress,
			Workers:     *workers,
			SerialPort:  cfg.SerialPort,
			SerialBaud:  cfg.SerialBaud,
			SerialDelay: cfg.SerialDelay,
			SerialError: cfg.SerialError,
			NMEAType:    cfg.NMEAType,
			Poll:        cfg.Poll,

			MonitoringPort: *monitoringPort,
		},
	}

	if err := s.Config.Validate(); err != nil {
		log.Fatalf("Config is invalid: %v", err)
	}

	if debugger {
		log.Warningf("Starting profiler on %s", pprofHTTP)
		go func() {
			log.Println(http.ListenAndServe(pprofHTTP, nil))
		}()
	}

	st := &stats.JSONStats{}
	go st.Start(s.Config.MonitoringPort)

	ch := &checker.SimpleChecker{
		ExpectedListeners: 1,
		ExpectedWorkers:   int64(s.Config.Workers),
		ExpectedSerial:    1,
	}

	ref := gpsref.New(s.Config.SerialDelay)
	reader := gpsserial.New(s.Config.SerialPort, s.Config.SerialBaud, s.Config.NMEAType, ref, ch, st)

	s.Stats = st
	s.Checker = ch
	s.Ref = ref

	ctx, cancelFunc := context.WithCancel(context.Background())

	sigStop := make(chan os.Signal, 1)
	shutdownFinish := make(chan struct{})
	signal.Notify(sigStop, syscall.SIGINT)
	signal.Notify(sigStop, syscall.SIGQUIT)
	signal.Notify(sigStop, syscall.SIGTERM)

	go func() {
		if err := reader.Run(ctx); err != nil {
			log.Errorf("Serial reader stopped: %v", err)
			cancelFunc()
		}
	}()

	if err := s.Start(ctx, cancelFunc); err != nil {
		log.Fatalf("Failed to start responder: %v", err)
	}

	go func() {
		select {
		case <-sigStop:
			log.Warning("Graceful shutdown")
			s.Stop()
			close(shutdownFinish)
			return
		case <-ctx.Done():
			log.Error("Internal error shutdown")
			s.Stop()
			close(shutdownFinish)
			return
		}
	}()

	<-shutdownFinish
}
