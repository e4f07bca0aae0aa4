// Package main is the entrypoint of Grabarr.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/viper"

	"grabarr/internal/browser"
	"grabarr/internal/cfg"
	"grabarr/internal/database"
	"grabarr/internal/domain/keys"
	"grabarr/internal/downloads"
	"grabarr/internal/logging"
	"grabarr/internal/metadata"
	"grabarr/internal/repo"
	"grabarr/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Grabarr exiting with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cfg.InitCommands(); err != nil {
		return err
	}
	if err := cfg.Execute(); err != nil {
		return err
	}
	if !cfg.ShouldRun() {
		return nil
	}

	if err := logging.Setup(viper.GetInt(keys.DebugLevel), viper.GetString(keys.LogFile)); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	dbc, err := database.InitDB(viper.GetString(keys.DBPath))
	if err != nil {
		return err
	}
	defer dbc.Close()

	history := repo.GetHistoryStore(dbc.DB)
	cookieSource := viper.GetString(keys.CookieSource)

	var probe downloads.CookieProber
	if cookieSource != "" {
		probe = browser.NewCookieProbe()
	}

	manager := downloads.NewManager(downloads.NewStore(), downloads.Config{
		TempDir:      viper.GetString(keys.TempDir),
		YtdlpPath:    viper.GetString(keys.YtdlpPath),
		CookieSource: cookieSource,
		Cookies:      probe,
		History:      history,
	})

	fetcher := metadata.NewFetcher(viper.GetString(keys.YtdlpPath), cookieSource)

	addr := ":" + strconv.Itoa(viper.GetInt(keys.Port))
	err = server.Serve(ctx, addr, server.Deps{
		Manager:  manager,
		Metadata: fetcher,
		History:  history,
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
