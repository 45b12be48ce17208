package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"choicelab/internal/config"
	"choicelab/internal/container"
	"choicelab/ui"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c, err := container.New(context.Background(), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()

	app, err := ui.NewApp(c.Recorder, c.Log)
	if err != nil {
		c.Log.Error("Failed to create UI app: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.UIPort,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.Log.Info("Starting run viewer on http://localhost%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		c.Log.Error("UI server stopped: %v", err)
		os.Exit(1)
	}
}
