package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/replica/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	config := server.DefaultConfig()
	if *configPath != "" {
		loaded, err := server.LoadConfig(*configPath)
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		config = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := server.NewServer(config)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start the server
	if err := srv.Start(ctx); err != nil {
		fmt.Println("Error starting server:", err)
	}

	<-stopCh
	cancel()
	if err := srv.Stop(); err != nil {
		fmt.Println("Error stopping server:", err)
	}
}
