package main

import (
	"context"
	"log"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/cli"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
