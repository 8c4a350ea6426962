package main

import (
	"context"
	"log"

	"github.com/dmribeiro/recibox/internal/cli"
	"github.com/dmribeiro/recibox/internal/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())

}
