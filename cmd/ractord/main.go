// Command ractord is the bootstrap shell for a ractor host process: it sets
// up structured logging, checks the store URL, and sizes the process-wide
// semaphore, then blocks until interrupted. It creates no actors itself.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btclog/v2"
	"github.com/dariolabs/ractor/internal/actor"
	"github.com/dariolabs/ractor/internal/build"
	"github.com/dariolabs/ractor/internal/store"
)

func main() {
	var (
		storeURL = flag.String("store", "redis://localhost:6379/0",
			"Store Adapter connection URL")
		semaphoreCap = flag.Int64("semaphore-capacity",
			actor.DefaultSemaphoreCapacity,
			"Process-wide bound on concurrently executing computations")
		logDir = flag.String("log-dir", "~/.ractord/logs",
			"Directory for log files (empty to disable file logging)")
		maxLogFiles = flag.Int("max-log-files", build.DefaultMaxLogFiles,
			"Maximum number of rotated log files to keep")
		maxLogFileSize = flag.Int("max-log-file-size",
			build.DefaultMaxLogFileSize,
			"Maximum log file size in MB before rotation")
	)
	flag.Parse()

	logDirExpanded := expandHome(*logDir)

	var logRotator *build.RotatingLogWriter
	if logDirExpanded != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDirExpanded,
			MaxLogFiles:    *maxLogFiles,
			MaxLogFileSize: *maxLogFileSize,
		})
		if err != nil {
			log.Printf("failed to init log rotator: %v "+
				"(continuing without file logging)", err)
			logRotator = nil
		} else {
			defer logRotator.Close()
		}
	}

	var handlers []btclog.Handler
	handlers = append(handlers, btclog.NewDefaultHandler(os.Stderr))
	if logRotator != nil {
		handlers = append(handlers, btclog.NewDefaultHandler(logRotator))
	}

	combined := build.NewHandlerSet(handlers...)
	actorLogger := btclog.NewSLogger(combined)
	actor.UseLogger(actorLogger)

	log.Printf("ractord version %s commit=%s go=%s",
		build.Version(), build.Commit, build.GoVersion)

	// Parsing the store URL here rejects a malformed -store value at
	// startup; the adapter itself is not kept. SetDefaultSemaphoreCapacity
	// must run before any actor calls actor.DefaultSemaphore(), since that
	// semaphore is a lazily constructed singleton.
	if _, err := store.RedisAdapterFromURL(*storeURL); err != nil {
		log.Fatalf("failed to configure store adapter: %v", err)
	}
	actor.SetDefaultSemaphoreCapacity(*semaphoreCap)

	log.Printf("ractord ready: store=%s semaphore_capacity=%d",
		*storeURL, *semaphoreCap)

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	<-ctx.Done()
	log.Println("ractord shutting down")
}

func expandHome(path string) string {
	expanded := os.ExpandEnv(path)
	if expanded == path && len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		expanded = home + path[1:]
	}
	return expanded
}
