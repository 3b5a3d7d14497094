package binlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"endfind/estimator"
	"endfind/observe"
)

// maxPayload bounds a single record; datagrams never exceed it.
const maxPayload = 65535

// Record is one captured datagram.
type Record struct {
	Time    time.Time
	Addr    string
	Payload []byte
}

// Lines splits the payload into trimmed non-empty lines.
func (r Record) Lines() []string {
	var out []string
	for _, l := range strings.Split(string(r.Payload), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

type Parser struct {
	Path    string
	Records []Record
}

func NewParser(path string) *Parser {
	return &Parser{Path: path}
}

// Parse loads every record of the capture file.
func (p *Parser) Parse() error {
	f, err := os.Open(p.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	recs, err := ReadAll(f)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Path, err)
	}
	p.Records = recs
	return nil
}

// Observations returns the distinct observations carried by the capture, in
// arrival order. Lines that are not observation commands are skipped.
func (p *Parser) Observations() []estimator.Observation {
	set := observe.NewSet()
	for _, rec := range p.Records {
		for _, line := range rec.Lines() {
			if obs, err := observe.ParseCommand(line); err == nil {
				set.Add(obs)
			}
		}
	}
	return set.Observations()
}

// ReadAll decodes a capture stream.
func ReadAll(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	hdr := make([]byte, globalLen)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, fmt.Errorf("read global header: %w", err)
	}
	if m := binary.LittleEndian.Uint32(hdr[0:4]); m != Magic {
		return nil, fmt.Errorf("bad magic 0x%08x", m)
	}
	if v := binary.LittleEndian.Uint16(hdr[4:6]); v != Version {
		return nil, fmt.Errorf("unsupported version %d", v)
	}

	var recs []Record
	head := make([]byte, 9)
	for {
		if _, err := io.ReadFull(br, head); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return recs, fmt.Errorf("record %d: %w", len(recs), err)
		}
		ts := int64(binary.LittleEndian.Uint64(head[0:8]))
		addr := make([]byte, head[8])
		if _, err := io.ReadFull(br, addr); err != nil {
			return recs, fmt.Errorf("record %d addr: %w", len(recs), err)
		}
		var lenBuf [4]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return recs, fmt.Errorf("record %d length: %w", len(recs), err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		if n > maxPayload {
			return recs, fmt.Errorf("record %d: payload too large (%d)", len(recs), n)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(br, payload); err != nil {
			return recs, fmt.Errorf("record %d payload: %w", len(recs), err)
		}
		recs = append(recs, Record{Time: time.Unix(0, ts), Addr: string(addr), Payload: payload})
	}
	return recs, nil
}
