package server

import (
	"fmt"
	"log"
	"net"
	"time"

	"endfind/binlog"
)

// Replay feeds a capture through the session. speed scales the recorded
// spacing between datagrams; 0 replays as fast as possible.
func (s *UdpServer) Replay(path string, speed float64) error {
	p := binlog.NewParser(path)
	if err := p.Parse(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	log.Printf("Replaying %s (%d datagrams) at %.1fx speed...", path, len(p.Records), speed)

	var first time.Time
	startReal := time.Now()
	for i, rec := range p.Records {
		if s.ctx.Err() != nil {
			break
		}
		if i == 0 {
			first = rec.Time
			startReal = time.Now()
		} else if speed > 0 {
			target := time.Duration(float64(rec.Time.Sub(first)) / speed)
			if wait := target - time.Since(startReal); wait > 0 {
				time.Sleep(wait)
			}
		}
		addr, _ := net.ResolveUDPAddr("udp", rec.Addr)
		s.handleDatagram(rec.Payload, addr, false)
	}
	log.Printf("Replay loop ended. Total datagrams: %d", len(p.Records))
	return nil
}
