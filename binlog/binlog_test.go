package binlog

import (
	"bytes"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.efl")
	w, err := NewWriter(path)
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 123456789)
	require.NoError(t, w.WriteRecord(Record{Time: t0, Addr: "10.0.0.2:5000", Payload: []byte(
		"/execute in minecraft:overworld run tp @s 100 64 200 -45 -30\n" +
			"/execute in minecraft:overworld run tp @s 100 64 200 -45 -30\n")}))
	require.NoError(t, w.WriteDatagram(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, []byte("clear")))
	require.NoError(t, w.WriteRecord(Record{Time: t0.Add(time.Second), Payload: []byte("/tp @s -5 70 6 12 0")}))
	require.NoError(t, w.Close())

	p := NewParser(path)
	require.NoError(t, p.Parse())
	require.Len(t, p.Records, 3)
	assert.True(t, p.Records[0].Time.Equal(t0))
	assert.Equal(t, "10.0.0.2:5000", p.Records[0].Addr)
	assert.Equal(t, "127.0.0.1:9", p.Records[1].Addr)
	assert.Equal(t, []string{"clear"}, p.Records[1].Lines())

	obs := p.Observations()
	require.Len(t, obs, 2)
	assert.Equal(t, 100.0, obs[0].X)
	assert.Equal(t, -5.0, obs[1].X)
}

func TestReadAllRejectsBadHeader(t *testing.T) {
	_, err := ReadAll(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Error(t, err)

	_, err = ReadAll(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestReadAllTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewStreamWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(Record{Time: time.Unix(1, 0), Payload: []byte("hello")}))
	require.NoError(t, w.WriteRecord(Record{Time: time.Unix(2, 0), Payload: []byte("world")}))

	data := buf.Bytes()
	recs, err := ReadAll(bytes.NewReader(data[:len(data)-2]))
	assert.Error(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []byte("hello"), recs[0].Payload)
}
