package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	soopify "github.com/soopify/site"
	"github.com/soopify/site/views"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; the process environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("soopify: load .env: %v", err)
	}

	app := soopify.New(soopify.ConfigFromEnv(), soopify.ViewFuncs{},
		soopify.WithStaticDir(soopify.EnvOr("STATIC_DIR", "public")))
	v, err := views.New(views.Site{
		Name:        app.Config.Name,
		URL:         app.Config.URL,
		Description: app.Config.Description,
	})
	if err != nil {
		log.Fatal(err)
	}
	app.Views = v

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.Close()
		if err != nil {
			log.Fatal(err)
		}
		return
	case sig := <-shutdown:
		log.Printf("soopify: received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		log.Printf("soopify: shutdown: %v", err)
	}
}
