// Package ipc implements the message channel between the orchestrator and
// the injected modules: a framed duplex protocol over a named pipe with
// request-id correlation and asynchronous reply delivery.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"gamestringer/textenc"
)

// Channel identifiers. The orchestrator owns the server end of both.
const (
	PipeNameUnreal = `\\.\pipe\GameStringerTranslator`
	PipeNameUnity  = `\\.\pipe\GameStringerUETranslator`
)

// MessageType discriminates frames on the wire
type MessageType uint32

// Client to server
const (
	TypeTranslateRequest MessageType = 1
	TypeCacheSync        MessageType = 2
	TypeLogMessage       MessageType = 3
	TypeStatsUpdate      MessageType = 4
)

// Server to client
const (
	TypeTranslateResponse MessageType = 101
	TypeConfigUpdate      MessageType = 102
	TypeShutdown          MessageType = 103
)

var (
	// ErrNotConnected is returned when a request is issued on a closed or
	// never-connected channel.
	ErrNotConnected = errors.New("ipc not connected")

	// ErrTimeout is returned when no response arrived before the deadline.
	ErrTimeout = errors.New("ipc timeout")

	// ErrProtocol is returned for frames that do not parse under the
	// channel's framing.
	ErrProtocol = errors.New("ipc protocol error")
)

// headerSize is type + request id + data length, each u32 little-endian
const headerSize = 12

// maxDataLength bounds a frame payload; anything larger is a framing error
const maxDataLength = 1 << 20

// Message is one frame: a typed header plus its payload bytes
type Message struct {
	Type      MessageType
	RequestID uint32
	Data      []byte
}

// Text decodes the payload as UTF-16LE text
func (m *Message) Text() (string, error) {
	return textenc.DecodeWide(m.Data)
}

// NewTextMessage builds a frame whose payload is text as UTF-16LE units
func NewTextMessage(t MessageType, requestID uint32, text string) (*Message, error) {
	data, err := textenc.EncodeWide(text)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, RequestID: requestID, Data: data}, nil
}

// BinaryCodec is the preferred framing: a 12-byte header followed by the
// payload.
type BinaryCodec struct{}

func (BinaryCodec) Encode(w io.Writer, msg *Message) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(msg.Type))
	binary.LittleEndian.PutUint32(header[4:], msg.RequestID)
	binary.LittleEndian.PutUint32(header[8:], uint32(len(msg.Data)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(msg.Data) > 0 {
		if _, err := w.Write(msg.Data); err != nil {
			return err
		}
	}
	return nil
}

func (BinaryCodec) Decode(r io.Reader) (*Message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	msg := &Message{
		Type:      MessageType(binary.LittleEndian.Uint32(header[0:])),
		RequestID: binary.LittleEndian.Uint32(header[4:]),
	}
	length := binary.LittleEndian.Uint32(header[8:])
	if length > maxDataLength {
		return nil, fmt.Errorf("frame of %d bytes: %w", length, ErrProtocol)
	}
	if length > 0 {
		msg.Data = make([]byte, length)
		if _, err := io.ReadFull(r, msg.Data); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Codec encodes frames onto and decodes frames off a byte stream
type Codec interface {
	Encode(w io.Writer, msg *Message) error
	Decode(r io.Reader) (*Message, error)
}
