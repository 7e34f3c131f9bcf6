package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripWithEvent(t *testing.T) {
	in := &frame{
		Type:          fullServerResponse,
		Flags:         flagWithEvent,
		Serialization: serializeJSON,
		Compression:   compressNone,
		Event:         eventSessionFinished,
		SessionID:     "session-1",
		Payload:       []byte(`{"code":3000}`),
	}

	out, err := decodeFrame(encodeFrame(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFrameConnectionEventCarriesConnectID(t *testing.T) {
	in := &frame{Type: fullServerResponse, Flags: flagWithEvent, Event: eventConnectionStarted, ConnectID: "c-1"}

	out, err := decodeFrame(encodeFrame(in))
	require.NoError(t, err)
	assert.Equal(t, "c-1", out.ConnectID)
	assert.Empty(t, out.SessionID)
}

func TestNewAudioRequestFlags(t *testing.T) {
	cases := []struct {
		name     string
		seq      int32
		last     bool
		flags    messageFlags
		sequence int32
	}{
		{name: "middle packet", seq: 3, flags: flagPositiveSequence, sequence: 3},
		{name: "last packet", seq: 4, last: true, flags: flagNegativeSequence, sequence: -4},
		{name: "last without sequence", seq: 0, last: true, flags: flagLastNoSequence},
		{name: "no sequence", seq: 0, flags: flagNoSequence},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAudioRequest([]byte{1, 2}, tc.seq, tc.last, compressNone)
			assert.Equal(t, tc.flags, f.Flags)
			assert.Equal(t, tc.sequence, f.Sequence)
			assert.Equal(t, tc.last, f.isLast())

			decoded, err := decodeFrame(encodeFrame(f))
			require.NoError(t, err)
			assert.Equal(t, tc.sequence, decoded.Sequence)
		})
	}
}

func TestErrorFrameCode(t *testing.T) {
	out, err := decodeFrame(encodeFrame(&frame{Type: errorMessage, ErrorCode: 45000001, Payload: []byte("bad")}))
	require.NoError(t, err)
	assert.Equal(t, uint32(45000001), out.ErrorCode)
	assert.Equal(t, []byte("bad"), out.Payload)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := decodeFrame([]byte{0x21, 0, 0, 0})
	assert.Error(t, err)

	_, err = decodeFrame([]byte{0x11})
	assert.Error(t, err)

	truncated := encodeFrame(newClientRequest([]byte("payload"), compressNone))
	_, err = decodeFrame(truncated[:len(truncated)-2])
	assert.Error(t, err)
}

func TestGzipCompression(t *testing.T) {
	data := []byte(`{"text":"hello"}`)

	packed, err := compress(data, compressGzip)
	require.NoError(t, err)
	unpacked, err := decompress(packed, compressGzip)
	require.NoError(t, err)
	assert.Equal(t, data, unpacked)

	_, err = compress(data, compression(7))
	assert.Error(t, err)
}
