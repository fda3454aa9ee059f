// Package main is the notification engine's process entry point: flags,
// config, logging, collaborator wiring, and graceful shutdown on
// Ctrl+C/SIGTERM, in that order.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notifyengine/internal/domain/notify"
	"notifyengine/internal/infra/authsession"
	"notifyengine/internal/infra/clock"
	"notifyengine/internal/infra/concurrency"
	"notifyengine/internal/infra/config"
	"notifyengine/internal/infra/console"
	"notifyengine/internal/infra/kv"
	"notifyengine/internal/infra/lifecycle"
	"notifyengine/internal/infra/logger"
	"notifyengine/internal/infra/presence"
	"notifyengine/internal/infra/timerwheel"
	"notifyengine/internal/infra/updatesink"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix(time.Now().Format("2006-01-02 15:04:05 "))

	envPath := flag.String("env", "assets/.env", "path to .env file")
	runFor := flag.Int("run-for", 0, "exit automatically after this many seconds (0 = run until signaled)")
	flag.Parse()

	if err := config.Load(*envPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(config.Env().LogLevel)
	for _, msg := range config.Warnings() {
		logger.Warn(msg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := concurrency.StartTimeoutTimer(ctx, *runFor, stop); err != nil {
		logger.Fatal("failed to start auto-shutdown timer", zap.Error(err))
	}

	env := config.Env()
	lc := lifecycle.New(ctx)

	var (
		store    *kv.Store
		presMgr  *presence.Manager
		mgr      *notify.Manager
		registry = config.NewRegistry(env)
		sysClock = clock.SystemClock{}
	)

	err := lc.Register("kv", "", nil, func(ctx context.Context) (context.Context, error) {
		var openErr error
		store, openErr = kv.Open(env.KVFile)
		return nil, openErr
	}, func(ctx context.Context) error {
		return store.Close()
	})
	if err != nil {
		log.Fatalf("register kv node: %v", err)
	}

	err = lc.Register("presence", "", nil, func(ctx context.Context) (context.Context, error) {
		presMgr = presence.NewManager(time.Duration(env.PresenceIdleTimeoutMs) * time.Millisecond)
		go presMgr.Run(ctx)
		return nil, nil
	}, nil)
	if err != nil {
		log.Fatalf("register presence node: %v", err)
	}

	// mgr is assigned by the "manager" node below before StartAll lets any
	// notification reach the wheel, so the closure's read of mgr is safe
	// without extra synchronization.
	wheel := timerwheel.New(sysClock, func(groupID notify.NotificationGroupId) {
		mgr.OnTimerFired(groupID)
	})

	err = lc.Register("manager", "", []string{"kv", "presence"}, func(ctx context.Context) (context.Context, error) {
		sink := updatesink.NewRateLimitedSink(ctx, updatesink.StdoutConsumer{}, env.UpdateSinkRPS, env.UpdateSinkBurst)
		var initErr error
		mgr, initErr = notify.NewManager(notify.ManagerOptions{
			Clock:    sysClock,
			Presence: presMgr,
			Auth:     authsession.Static{Bot: env.BotSession},
			Timer:    wheel,
			Sink:     sink,
			KV:       store,
			Config:   registry,
			Logger:   logger.Logger(),
		})
		return nil, initErr
	}, nil)
	if err != nil {
		log.Fatalf("register manager node: %v", err)
	}

	if startErr := lc.StartAll(); startErr != nil {
		log.Fatalf("startup failed: %v", startErr)
	}

	if env.Interactive {
		shell, shellErr := console.New(mgr)
		if shellErr != nil {
			logger.Errorf("console unavailable: %v", shellErr)
		} else {
			shell.Run(nil)
			_ = shell.Close()
			stop()
		}
	}

	<-ctx.Done()

	if shutdownErr := lc.Shutdown(); shutdownErr != nil {
		log.Fatalf("shutdown failed: %v", shutdownErr)
	}
	log.Println("graceful shutdown complete")
}
