package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-storefront/commerce/commercefake"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/server"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/redisstore"
	"github.com/jrsteele09/go-storefront/storage/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	setupLogging(c)

	durable, err := newDurableStore(c)
	if err != nil {
		return err
	}

	var options []server.ServerOption
	if c.GetStorageBackend() == config.StorageRedis {
		// Navigation state must reach whichever instance serves the next page.
		options = append(options, server.WithFlashStore(storage.Namespace(durable, "flash")))
	}
	if c.GetFakeAPI() {
		api, err := startFakeAPI()
		if err != nil {
			return err
		}
		defer api.Close()
		options = append(options, server.WithAPIBaseURL(api.URL+commercefake.APIPrefix))
	}

	handler, err := server.New(c, durable, options...)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	go func() {
		if err := listenAndServe(srv); err != nil {
			zlog.Err(err).Msg("server stopped unexpectedly")
		}
	}()
	waitForStopSignal()
	returnError = shutdown(srv)
	return returnError
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newDurableStore returns the backend holding browser-session state.
func newDurableStore(c config.Config) (storage.Store, error) {
	if c.GetStorageBackend() != config.StorageRedis {
		log.Printf("Using in-memory session storage\n")
		return repofake.NewMemoryStore(), nil
	}
	store := redisstore.New(redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()}), c.GetMaxSessionAge())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis %s: %w", c.GetRedisAddr(), err)
	}
	log.Printf("Using redis session storage at %s\n", c.GetRedisAddr())
	return store, nil
}

type fakeAPI struct {
	URL    string
	server *http.Server
}

func (f *fakeAPI) Close() {
	_ = f.server.Close()
}

// startFakeAPI serves the in-memory commerce API on a free local port.
func startFakeAPI() (*fakeAPI, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("fake API listen: %w", err)
	}
	api := &fakeAPI{
		URL:    "http://" + listener.Addr().String(),
		server: &http.Server{Handler: commercefake.NewAPIServer(commercefake.New())},
	}
	go func() {
		if err := api.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Err(err).Msg("fake API stopped")
		}
	}()
	log.Printf("Fake commerce API listening on %s (login %s / %s)\n", api.URL, commercefake.DemoEmail, commercefake.DemoPassword)
	return api, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
