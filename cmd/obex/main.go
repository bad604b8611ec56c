// Command obex runs the exchange's HTTP façade: the matching engine, the
// event bus, and the Stockfighter-compatible REST API, all in one process.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"obex/internal/auth"
	"obex/internal/config"
	"obex/internal/eventbus"
	"obex/internal/httpapi"
	"obex/internal/matching"
	"obex/internal/metrics"
	"obex/internal/registry"
	"obex/internal/wsapi"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("bad command line flags")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	gate, err := auth.Load(cfg.AccountsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.AccountsFile).Msg("unable to load accounts file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, ctx := tomb.WithContext(ctx)
	bus := eventbus.New(t, cfg.BusBufferSize, logger.With().Str("component", "eventbus").Logger())
	bus.Run()

	factory := registry.BookFactory(func(venue, stock string) *matching.Book {
		return matching.New(venue, stock, bus)
	})
	reg := registry.New(cfg.MaxBooks, factory)

	if _, err := reg.Ensure(cfg.DefaultVenue, cfg.DefaultSymbol); err != nil {
		logger.Fatal().Err(err).Msg("unable to create default venue/symbol")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	face := httpapi.New(reg, gate, m, cfg.Excess, logger.With().Str("component", "httpapi").Logger())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           face.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	t.Go(func() error {
		logger.Info().Int("port", cfg.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.Websockets {
		ws := wsapi.New(bus, logger.With().Str("component", "wsapi").Logger())
		t.Go(func() error {
			logger.Info().Int("port", cfg.WSPort).Msg("websocket server listening")
			return ws.Run(ctx, cfg.WSPort)
		})
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during http shutdown")
	}
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		logger.Error().Err(err).Msg("error during goroutine shutdown")
	}
}
