package relay

import (
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	queueSize    = 64
	dialTimeout  = 2 * time.Second
	writeTimeout = 5 * time.Second
	retryDelay   = 500 * time.Millisecond
)

// target owns one downstream connection. Results are queued and written by
// a single goroutine, which redials after any failure.
type target struct {
	proto  string
	addr   string
	kinds  Kind
	header string
	queue  chan Result
	wg     sync.WaitGroup
}

// Sender forwards session results to UDP and TCP consumers. Every target has
// its own bounded queue; when it is full the result is dropped for that
// target only.
type Sender struct {
	mu      sync.RWMutex
	header  string
	targets []*target
	running bool
}

// NewSender returns a sender that prefixes every line with "header:".
// An empty header sends bare lines.
func NewSender(header string) *Sender {
	return &Sender{header: header}
}

// AddTarget registers addr over proto ("udp" or "tcp") for the given kinds.
// Call before Start.
func (s *Sender) AddTarget(proto, addr string, kinds Kind) error {
	proto = strings.ToLower(proto)
	var err error
	switch proto {
	case "udp":
		_, err = net.ResolveUDPAddr(proto, addr)
	case "tcp":
		_, err = net.ResolveTCPAddr(proto, addr)
	default:
		return fmt.Errorf("relay: unsupported protocol %q", proto)
	}
	if err != nil {
		return fmt.Errorf("relay: %s target %s: %w", proto, addr, err)
	}
	s.targets = append(s.targets, &target{
		proto:  proto,
		addr:   addr,
		kinds:  kinds,
		header: s.header,
	})
	return nil
}

func (s *Sender) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	for _, t := range s.targets {
		t.queue = make(chan Result, queueSize)
		t.wg.Add(1)
		go t.run(t.queue)
	}
}

// Stop closes every queue and waits for the writers to flush what is left.
// It is safe to call more than once, and Start may follow it.
func (s *Sender) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for _, t := range s.targets {
		close(t.queue)
	}
	s.mu.Unlock()

	for _, t := range s.targets {
		t.wg.Wait()
	}
}

// Publish queues r for every target subscribed to its kind.
func (s *Sender) Publish(r Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return
	}
	k := r.Kind()
	for _, t := range s.targets {
		if t.kinds&k == 0 {
			continue
		}
		select {
		case t.queue <- r:
		default:
			log.Printf("relay: %s %s queue full, dropping result", t.proto, t.addr)
		}
	}
}

func (t *target) run(queue <-chan Result) {
	defer t.wg.Done()
	var conn net.Conn
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	for r := range queue {
		if conn == nil {
			c, err := net.DialTimeout(t.proto, t.addr, dialTimeout)
			if err != nil {
				log.Printf("relay: dial %s %s: %v", t.proto, t.addr, err)
				time.Sleep(retryDelay)
				continue
			}
			conn = c
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write(r.Line(t.header)); err != nil {
			log.Printf("relay: write %s %s: %v", t.proto, t.addr, err)
			conn.Close()
			conn = nil
		}
	}
}
