package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec is the legacy framing kept for the Unity channel: one UTF-8
// JSON object per message, no request ids. Channels configured for JSON
// reject binary frames and vice versa.
type JSONCodec struct{}

type jsonRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type jsonResponse struct {
	Translated string `json:"translated"`
}

func (JSONCodec) Encode(w io.Writer, msg *Message) error {
	text, err := msg.Text()
	if err != nil {
		return err
	}

	var payload any
	switch msg.Type {
	case TypeTranslateRequest:
		payload = jsonRequest{Type: "translate", Text: text}
	case TypeTranslateResponse:
		payload = jsonResponse{Translated: text}
	default:
		return fmt.Errorf("message type %d has no JSON form: %w", msg.Type, ErrProtocol)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

func (JSONCodec) Decode(r io.Reader) (*Message, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	line, err := br.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}

	// A single object can be either direction; try the request shape
	// first, then the response.
	var req jsonRequest
	if err := json.Unmarshal(line, &req); err == nil && req.Type == "translate" {
		return NewTextMessage(TypeTranslateRequest, 0, req.Text)
	}

	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err == nil && resp.Translated != "" {
		return NewTextMessage(TypeTranslateResponse, 0, resp.Translated)
	}

	return nil, fmt.Errorf("unparseable JSON frame: %w", ErrProtocol)
}
