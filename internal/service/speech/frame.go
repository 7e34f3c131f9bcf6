package speech

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// Volcengine openspeech binary frames: a 4 byte header, optional sequence
// and event fields, a big-endian payload size and the payload.
const protocolVersion = 0b0001

type messageType uint8

const (
	fullClientRequest  messageType = 0b0001
	audioOnlyRequest   messageType = 0b0010
	fullServerResponse messageType = 0b1001
	audioOnlyResponse  messageType = 0b1011
	errorMessage       messageType = 0b1111
)

type messageFlags uint8

const (
	flagNoSequence       messageFlags = 0b0000
	flagPositiveSequence messageFlags = 0b0001
	flagLastNoSequence   messageFlags = 0b0010
	flagNegativeSequence messageFlags = 0b0011
	flagWithEvent        messageFlags = 0b0100
)

type serialization uint8

const (
	serializeNone serialization = 0b0000
	serializeJSON serialization = 0b0001
)

type compression uint8

const (
	compressNone compression = 0b0000
	compressGzip compression = 0b0001
)

type eventType int32

const (
	eventStartConnection    eventType = 1
	eventFinishConnection   eventType = 2
	eventConnectionStarted  eventType = 50
	eventConnectionFailed   eventType = 51
	eventConnectionFinished eventType = 52
	eventSessionFinished    eventType = 152
)

type frame struct {
	Type          messageType
	Flags         messageFlags
	Serialization serialization
	Compression   compression
	Sequence      int32
	Event         eventType
	SessionID     string
	ConnectID     string
	ErrorCode     uint32
	Payload       []byte
}

// isLast reports whether the frame closes the stream.
func (f *frame) isLast() bool {
	switch f.Flags & 0b0011 {
	case flagLastNoSequence, flagNegativeSequence:
		return true
	}
	return false
}

func (f *frame) hasEvent() bool {
	return f.Flags&flagWithEvent == flagWithEvent
}

// payload returns the decompressed payload.
func (f *frame) payload() ([]byte, error) {
	return decompress(f.Payload, f.Compression)
}

func newClientRequest(payload []byte, c compression) *frame {
	return &frame{Type: fullClientRequest, Flags: flagNoSequence, Serialization: serializeJSON, Compression: c, Payload: payload}
}

// newAudioRequest builds an audio packet. The last packet carries the
// negated sequence number.
func newAudioRequest(audio []byte, seq int32, last bool, c compression) *frame {
	f := &frame{Type: audioOnlyRequest, Serialization: serializeNone, Compression: c, Sequence: seq, Payload: audio}
	switch {
	case last && seq != 0:
		f.Flags, f.Sequence = flagNegativeSequence, -seq
	case last:
		f.Flags = flagLastNoSequence
	case seq > 0:
		f.Flags = flagPositiveSequence
	default:
		f.Flags = flagNoSequence
	}
	return f
}

func eventSkipsSessionID(e eventType) bool {
	switch e {
	case eventStartConnection, eventFinishConnection, eventConnectionStarted, eventConnectionFailed, eventConnectionFinished:
		return true
	}
	return false
}

func eventHasConnectID(e eventType) bool {
	switch e {
	case eventConnectionStarted, eventConnectionFailed, eventConnectionFinished:
		return true
	}
	return false
}

func encodeFrame(f *frame) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{
		protocolVersion<<4 | 0b0001,
		uint8(f.Type)<<4 | uint8(f.Flags),
		uint8(f.Serialization)<<4 | uint8(f.Compression),
		0,
	})

	putUint32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	putString := func(s string) {
		putUint32(uint32(len(s)))
		buf.WriteString(s)
	}

	switch f.Flags & 0b0011 {
	case flagPositiveSequence, flagNegativeSequence:
		putUint32(uint32(f.Sequence))
	}
	if f.hasEvent() {
		putUint32(uint32(f.Event))
		if !eventSkipsSessionID(f.Event) {
			putString(f.SessionID)
		}
		if eventHasConnectID(f.Event) {
			putString(f.ConnectID)
		}
	}
	if f.Type == errorMessage {
		putUint32(f.ErrorCode)
	}
	putUint32(uint32(len(f.Payload)))
	buf.Write(f.Payload)
	return buf.Bytes()
}

func decodeFrame(data []byte) (*frame, error) {
	r := bytes.NewReader(data)

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if v := head[0] >> 4; v != protocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", v)
	}
	if extra := int(head[0]&0x0F)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("read extended header: %w", err)
		}
	}

	f := &frame{
		Type:          messageType(head[1] >> 4),
		Flags:         messageFlags(head[1] & 0x0F),
		Serialization: serialization(head[2] >> 4),
		Compression:   compression(head[2] & 0x0F),
	}

	readUint32 := func(what string) (uint32, error) {
		var v uint32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return 0, fmt.Errorf("read %s: %w", what, err)
		}
		return v, nil
	}
	readString := func(what string) (string, error) {
		size, err := readUint32(what + " size")
		if err != nil {
			return "", err
		}
		b := make([]byte, size)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("read %s: %w", what, err)
		}
		return string(b), nil
	}

	switch f.Flags & 0b0011 {
	case flagPositiveSequence, flagNegativeSequence:
		seq, err := readUint32("sequence")
		if err != nil {
			return nil, err
		}
		f.Sequence = int32(seq)
	}

	if f.hasEvent() {
		ev, err := readUint32("event")
		if err != nil {
			return nil, err
		}
		f.Event = eventType(int32(ev))
		if !eventSkipsSessionID(f.Event) {
			if f.SessionID, err = readString("session id"); err != nil {
				return nil, err
			}
		}
		if eventHasConnectID(f.Event) {
			if f.ConnectID, err = readString("connect id"); err != nil {
				return nil, err
			}
		}
	}

	if f.Type == errorMessage {
		code, err := readUint32("error code")
		if err != nil {
			return nil, err
		}
		f.ErrorCode = code
	}

	size, err := readUint32("payload size")
	if err != nil {
		return nil, err
	}
	if size > 0 {
		f.Payload = make([]byte, size)
		if _, err := io.ReadFull(r, f.Payload); err != nil {
			return nil, fmt.Errorf("read payload (expected %d bytes): %w", size, err)
		}
	}
	return f, nil
}

func compress(data []byte, method compression) ([]byte, error) {
	switch method {
	case compressNone:
		return data, nil
	case compressGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("gzip write failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close failed: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}

func decompress(data []byte, method compression) ([]byte, error) {
	switch method {
	case compressNone:
		return data, nil
	case compressGzip:
		if len(data) == 0 {
			return nil, nil
		}
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader creation failed: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unsupported compression method: %d", method)
	}
}
