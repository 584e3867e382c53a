package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/steveyiyo/avatar-voice/internal/config"
	"github.com/steveyiyo/avatar-voice/internal/core/gemini"
	"github.com/steveyiyo/avatar-voice/internal/core/respond"
	"github.com/steveyiyo/avatar-voice/internal/core/speech/azure"
	h "github.com/steveyiyo/avatar-voice/internal/http"
	"github.com/steveyiyo/avatar-voice/internal/http/handlers"
	"github.com/steveyiyo/avatar-voice/internal/logging"
	"github.com/steveyiyo/avatar-voice/internal/repo/memory"
	"github.com/steveyiyo/avatar-voice/internal/repo/natsstore"
	"github.com/steveyiyo/avatar-voice/internal/repo/s3store"
	"github.com/steveyiyo/avatar-voice/pkg/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	boot, closeLog := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer closeLog.Close()
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, boot); err != nil {
		boot.Error().Err(err).Msg("server exited")
		closeLog.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	gen, err := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RequestTimeout())
	if err != nil {
		return err
	}
	defer gen.Close()

	synth, err := azure.New(cfg.AzureAPIKey, cfg.AzureRegion, cfg.VoiceName, log)
	if err != nil {
		return err
	}
	defer synth.Close()

	store, audio, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	svc := respond.NewService(gen, synth, store, respond.Options{
		Voice:              cfg.VoiceName,
		Lang:               cfg.VoiceLang,
		DefaultPersonality: cfg.DefaultPersonality,
	}, log)

	hub := ws.NewHub()
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: h.NewRouter(h.Deps{
			Config:  cfg,
			Service: svc,
			Audio:   audio,
			Hub:     hub,
			Log:     log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("model", gen.Model()).
			Str("voice", cfg.VoiceName).
			Str("audio_store", cfg.AudioStore).
			Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStore picks the audio backend. The returned source is non-nil only when
// this process serves clips itself.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (respond.AudioStore, handlers.AudioSource, io.Closer, error) {
	noop := closerFunc(func() error { return nil })
	switch cfg.AudioStore {
	case config.StoreMemory:
		r := memory.NewAudioRepo(cfg.PublicBaseURL, cfg.AudioTTL())
		go r.Run(ctx, time.Minute)
		return r, r, noop, nil
	case config.StoreS3:
		s, err := s3store.New(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, noop, nil
	case config.StoreNATS:
		nc, err := nats.Connect(cfg.NATSURL,
			nats.Name("avatar-voice"),
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn().Err(err).Msg("nats disconnected")
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
			}),
		)
		if err != nil {
			return nil, nil, nil, err
		}
		js, err := nc.JetStream()
		if err != nil {
			nc.Close()
			return nil, nil, nil, err
		}
		s, err := natsstore.New(js, cfg.NATSBucket, cfg.PublicBaseURL, cfg.AudioTTL())
		if err != nil {
			nc.Close()
			return nil, nil, nil, err
		}
		return s, s, closerFunc(func() error { return nc.Drain() }), nil
	}
	// inline
	return nil, nil, noop, nil
}
