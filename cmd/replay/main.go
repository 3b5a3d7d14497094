package main

import (
	"flag"
	"log"
	"net"
	"time"

	"endfind/binlog"
)

func main() {
	capturePath := flag.String("capture", "", "Input capture file")
	destAddr := flag.String("dest", "127.0.0.1:44333", "Destination UDP address")
	speed := flag.Float64("speed", 1.0, "Replay speed multiplier (0 for max speed)")
	flag.Parse()

	if *capturePath == "" {
		log.Fatal("--capture required")
	}

	raddr, err := net.ResolveUDPAddr("udp", *destAddr)
	if err != nil {
		log.Fatalf("Invalid dest address: %v", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	p := binlog.NewParser(*capturePath)
	if err := p.Parse(); err != nil {
		log.Fatalf("Read capture failed: %v", err)
	}

	log.Printf("Replaying %s to %s...", *capturePath, *destAddr)

	var first time.Time
	var startReal time.Time
	count := 0
	for i, rec := range p.Records {
		if i == 0 {
			first = rec.Time
			startReal = time.Now()
		} else if *speed > 0 {
			target := time.Duration(float64(rec.Time.Sub(first)) / *speed)
			if wait := target - time.Since(startReal); wait > 0 {
				time.Sleep(wait)
			}
		}
		if _, err := conn.Write(rec.Payload); err != nil {
			log.Printf("Write failed: %v", err)
			continue
		}
		count++
	}
	log.Printf("Done. Sent %d datagrams.", count)
}
