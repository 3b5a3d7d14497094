package binlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

const (
	Magic   = 0x454E4446 // "FDNE" little endian
	Version = 1

	globalLen  = 8
	maxAddrLen = 255
)

// Writer appends received datagrams to a capture file.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewWriter creates (or truncates) a capture file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewStreamWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// NewStreamWriter writes a capture to any io.Writer.
func NewStreamWriter(w io.Writer) (*Writer, error) {
	cw := &Writer{w: w, buf: make([]byte, 16)}
	if err := cw.writeGlobalHeader(); err != nil {
		return nil, err
	}
	return cw, nil
}

func (cw *Writer) writeGlobalHeader() error {
	b := make([]byte, globalLen)
	binary.LittleEndian.PutUint32(b[0:], Magic)
	binary.LittleEndian.PutUint16(b[4:], Version)
	_, err := cw.w.Write(b)
	return err
}

// WriteDatagram records one datagram stamped with the current time.
func (cw *Writer) WriteDatagram(addr *net.UDPAddr, data []byte) error {
	return cw.WriteRecord(Record{Time: time.Now(), Addr: addrString(addr), Payload: data})
}

// WriteRecord records one datagram with an explicit timestamp.
func (cw *Writer) WriteRecord(rec Record) error {
	if len(rec.Addr) > maxAddrLen {
		return fmt.Errorf("address too long: %d bytes", len(rec.Addr))
	}
	cw.mu.Lock()
	defer cw.mu.Unlock()

	// ts(8) addrLen(1)
	binary.LittleEndian.PutUint64(cw.buf[0:], uint64(rec.Time.UnixNano()))
	cw.buf[8] = byte(len(rec.Addr))
	if _, err := cw.w.Write(cw.buf[:9]); err != nil {
		return err
	}
	if _, err := io.WriteString(cw.w, rec.Addr); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(cw.buf[0:], uint32(len(rec.Payload)))
	if _, err := cw.w.Write(cw.buf[:4]); err != nil {
		return err
	}
	_, err := cw.w.Write(rec.Payload)
	return err
}

func (cw *Writer) Close() error {
	if c, ok := cw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func addrString(addr *net.UDPAddr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
