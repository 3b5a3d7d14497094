package server

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"sync"

	"endfind/binlog"
)

const (
	DefaultPort   = 44333
	MaxPacketSize = 65535
)

// UdpServer feeds datagrams of newline separated commands into a session.
type UdpServer struct {
	conn    *net.UDPConn
	session *Session
	capture *binlog.Writer

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewUdpServer(port int, session *Session) (*UdpServer, error) {
	if port == 0 {
		port = DefaultPort
	}
	addr := net.UDPAddr{
		Port: port,
		IP:   net.ParseIP("0.0.0.0"),
	}
	conn, err := net.ListenUDP("udp", &addr)
	if err != nil {
		return nil, err
	}
	return newUdpServer(conn, session), nil
}

func newUdpServer(conn *net.UDPConn, session *Session) *UdpServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &UdpServer{
		conn:    conn,
		session: session,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetCapture records every received datagram.
func (s *UdpServer) SetCapture(w *binlog.Writer) {
	s.capture = w
}

func (s *UdpServer) Addr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *UdpServer) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start reads datagrams until Stop is called.
func (s *UdpServer) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	buf := make([]byte, MaxPacketSize)
	log.Printf("UDP Server listening on %s", s.conn.LocalAddr().String())

	for s.isRunning() {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if s.isRunning() {
				log.Printf("Read error: %v", err)
			}
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		s.handleDatagram(data, addr, true)
	}
}

func (s *UdpServer) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.cancel()
	s.conn.Close()
}

func (s *UdpServer) handleDatagram(data []byte, addr *net.UDPAddr, record bool) {
	if record && s.capture != nil {
		if err := s.capture.WriteDatagram(addr, data); err != nil {
			log.Printf("capture write failed: %v", err)
		}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if err := s.session.HandleLine(s.ctx, line); err != nil {
			log.Printf("datagram from %v: %v", addr, err)
		}
	}
}
