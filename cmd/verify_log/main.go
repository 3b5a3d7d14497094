package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"endfind/binlog"
	"endfind/observe"
)

func main() {
	file1 := flag.String("1", "", "Capture file")
	file2 := flag.String("2", "", "Second capture to compare against (optional)")
	verbose := flag.Bool("v", false, "Print every record")
	flag.Parse()

	if *file1 == "" {
		log.Fatal("Usage: verify_log -1 <capture> [-2 <replayed>] [-v]")
	}

	p1 := binlog.NewParser(*file1)
	if err := p1.Parse(); err != nil {
		log.Fatalf("Error reading %s: %v", *file1, err)
	}
	summarize(p1, *verbose)

	if *file2 == "" {
		return
	}
	p2 := binlog.NewParser(*file2)
	if err := p2.Parse(); err != nil {
		log.Fatalf("Error reading %s: %v", *file2, err)
	}
	summarize(p2, false)

	minLen := len(p1.Records)
	if len(p2.Records) < minLen {
		minLen = len(p2.Records)
	}
	mismatches := 0
	for i := 0; i < minLen; i++ {
		if !bytes.Equal(p1.Records[i].Payload, p2.Records[i].Payload) {
			fmt.Printf("Mismatch at record %d: len1=%d len2=%d\n", i, len(p1.Records[i].Payload), len(p2.Records[i].Payload))
			mismatches++
			if mismatches > 10 {
				fmt.Println("Too many mismatches, stopping.")
				break
			}
		}
	}
	if mismatches == 0 && len(p1.Records) == len(p2.Records) {
		fmt.Println("SUCCESS: captures match.")
	} else {
		fmt.Println("FAILURE: captures differ.")
	}
}

func summarize(p *binlog.Parser, verbose bool) {
	var bytesTotal uint64
	bad := 0
	for i, rec := range p.Records {
		bytesTotal += uint64(len(rec.Payload))
		for _, line := range rec.Lines() {
			if line == "clear" {
				continue
			}
			if _, err := observe.ParseCommand(line); err != nil {
				bad++
			}
		}
		if verbose {
			fmt.Printf("%5d %s %-21s %q\n", i, rec.Time.Format("15:04:05.000"), rec.Addr, rec.Payload)
		}
	}
	obs := p.Observations()
	fmt.Printf("%s: %s records, %s, %d distinct observations, %d unparseable lines\n",
		p.Path, humanize.Comma(int64(len(p.Records))), humanize.Bytes(bytesTotal), len(obs), bad)
	if verbose {
		for _, o := range obs {
			fmt.Println(o)
		}
	}
}
