package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanmoran/gitferry/internal/commands"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals to cancel context so cleanups run and in-flight
	// git invocations are interrupted
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := commands.Execute(ctx); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}
