package main

import (
	"flag"
	"log"

	"github.com/CantorAI/streamrelay/config"
	"github.com/CantorAI/streamrelay/relay"
	"github.com/CantorAI/streamrelay/webservice"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	r := relay.New()
	for _, ch := range cfg.Channels {
		if err := r.CreateChannel(ch.ID, relay.Kind(ch.Kind), ch.Codec, ch.MaxFrames); err != nil {
			log.Fatalf("Failed to create channel %q: %v", ch.ID, err)
		}
		log.Printf("channel %s: kind=%s codec=%s", ch.ID, ch.Kind, ch.Codec)
	}
	r.Start()
	defer r.Stop()

	service := webservice.New(r, cfg)
	log.Println("listening on", cfg.Addr())
	if err := service.Router().Run(cfg.Addr()); err != nil {
		log.Fatalf("HTTP server: %v", err)
	}
}
