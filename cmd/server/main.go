package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"endfind/binlog"
	"endfind/config"
	"endfind/relay"
	"endfind/server"
	"endfind/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	port := flag.Int("port", 0, "UDP port to listen on (overrides config)")
	httpPort := flag.Int("http", -1, "HTTP/WebSocket port (e.g. 8080). 0 to disable.")
	capturePath := flag.String("capture", "", "Path to capture file or directory (optional)")
	replayPath := flag.String("replay", "", "Replay a capture into the session before listening")
	speed := flag.Float64("speed", 0, "Replay speed multiplier (0 for max speed)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *port > 0 {
		cfg.UDP.Port = *port
	}
	if *httpPort >= 0 {
		cfg.HTTP.Port = *httpPort
	}
	if *capturePath != "" {
		cfg.UDP.Capture = *capturePath
	}
	cfg.Print()

	session := server.NewSession(cfg.Estimator)

	udpSvr, err := server.NewUdpServer(cfg.UDP.Port, session)
	if err != nil {
		log.Fatalf("Failed to create UDP server: %v", err)
	}

	var webSvr *web.Server
	if cfg.HTTP.Port > 0 {
		webSvr = web.NewServer(session)
		session.AddSink(server.SinkFunc(func(u server.Update) { webSvr.Publish(u) }))
		go webSvr.Start(cfg.HTTP.Port, cfg.HTTP.StaticDir)
	}

	if len(cfg.Relay.Targets) > 0 {
		sender := relay.NewSender(cfg.Relay.Header)
		for _, t := range cfg.Relay.Targets {
			if err := sender.AddTarget(t.Proto, t.Addr, relay.KindAll); err != nil {
				log.Fatalf("Invalid relay target: %v", err)
			}
			log.Printf("Added relay %s target: %s", strings.ToUpper(t.Proto), t.Addr)
		}
		sender.Start()
		defer sender.Stop()
		session.AddSink(server.RelaySink(sender))
	}

	if cfg.UDP.Capture != "" {
		path := cfg.UDP.Capture
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			path = fmt.Sprintf("%s/ENDFIND_%s.bin", path, time.Now().Format("20060102150405"))
		}
		w, err := binlog.NewWriter(path)
		if err != nil {
			log.Fatalf("Failed to create capture writer: %v", err)
		}
		defer w.Close()
		udpSvr.SetCapture(w)
		log.Printf("Logging datagrams to %s", path)
	}

	if *replayPath != "" {
		if err := udpSvr.Replay(*replayPath, *speed); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}
	}

	go udpSvr.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	udpSvr.Stop()
	if webSvr != nil {
		webSvr.Hub.Stop()
	}
}
