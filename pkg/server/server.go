/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package server wires the scheduler service together: configuration, logging,
// the database client, the HTTP API and the background tentative-due-date
// recompute.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/calendar"
	"github.com/printflow/scheduler/pkg/capacity"
	"github.com/printflow/scheduler/pkg/config"
	dbclient "github.com/printflow/scheduler/pkg/database/client"
	"github.com/printflow/scheduler/pkg/handlers"
	commonklog "github.com/printflow/scheduler/pkg/klog"
	"github.com/printflow/scheduler/pkg/options"
	"github.com/printflow/scheduler/pkg/tentative"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	opts       *options.Options
	httpServer *http.Server
	dbClient   *dbclient.Client
	cron       *cron.Cron
}

// NewServer creates the scheduler server: parses flags, initializes logging,
// loads the config file and connects the database client.
func NewServer() (*Server, error) {
	s := &Server{opts: &options.Options{}}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	if err := s.opts.InitFlags(); err != nil {
		return err
	}
	if err := commonklog.Init(s.opts.LogfilePath, s.opts.LogFileSize); err != nil {
		return err
	}
	configPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = config.LoadConfig(configPath); err != nil {
		return err
	}
	if config.IsDBEnable() {
		if s.dbClient = dbclient.NewClient(); s.dbClient == nil {
			return fmt.Errorf("failed to init the db client")
		}
	}
	return nil
}

// Start runs the HTTP server and the background recompute until a termination
// signal arrives, then shuts both down.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go s.startHttpServer(ctx, errCh)
	if err := s.startTentativeCron(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		klog.InfoS("received termination signal")
	case err := <-errCh:
		if err != nil {
			klog.ErrorS(err, "http server failed")
			s.Stop()
			return err
		}
	}
	s.Stop()
	return nil
}

func (s *Server) startHttpServer(ctx context.Context, errCh chan<- error) {
	port := config.GetServerPort()
	if port == 0 {
		errCh <- fmt.Errorf("server.port is not configured")
		return
	}
	var db dbclient.Interface
	if s.dbClient != nil {
		db = s.dbClient
	}
	engine, err := handlers.InitHttpHandlers(ctx, db)
	if err != nil {
		errCh <- err
		return
	}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
	klog.InfoS("starting http server", "port", port)
	if err = s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errCh <- err
		return
	}
	errCh <- nil
}

// startTentativeCron schedules the periodic tentative-due-date recompute for
// jobs awaiting proof approval.
func (s *Server) startTentativeCron(ctx context.Context) error {
	if s.dbClient == nil {
		klog.InfoS("db disabled, skipping tentative due date recompute")
		return nil
	}
	s.cron = cron.New()
	spec := config.GetTentativeCron()
	_, err := s.cron.AddFunc(spec, func() {
		cal := calendar.Load(ctx, s.dbClient)
		estimator := tentative.NewEstimator(s.dbClient, capacity.NewStore(s.dbClient, cal))
		estimates, err := estimator.RecalcTentativeDueDates(ctx)
		if err != nil {
			klog.ErrorS(err, "tentative due date recompute failed")
			return
		}
		klog.InfoS("tentative due dates recomputed", "jobs", len(estimates))
	})
	if err != nil {
		return fmt.Errorf("invalid tentative cron %q: %w", spec, err)
	}
	s.cron.Start()
	klog.InfoS("tentative due date recompute scheduled", "cron", spec)
	return nil
}

// Stop shuts down the HTTP server, stops the cron and closes the database.
func (s *Server) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "failed to shutdown http server")
		}
	}
	if s.dbClient != nil {
		s.dbClient.Close()
	}
	klog.Flush()
}
