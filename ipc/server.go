package ipc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/uuid"
)

// TranslateFunc resolves one original string for a client. Returning an
// error sends the original back so the client never loses text.
type TranslateFunc func(text string) (string, error)

// serverConn pairs a connection with a write lock; responses are written
// from per-request goroutines and config pushes from the orchestrator.
type serverConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

func (sc *serverConn) write(codec Codec, msg *Message) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return codec.Encode(sc.conn, msg)
}

// Server is the orchestrator's end of a channel. Each accepted connection
// is served on its own goroutine and tagged with a session id for log
// correlation.
type Server struct {
	codec     Codec
	translate TranslateFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]*serverConn
	closed   bool

	// OnStats receives STATS_UPDATE triples, if set
	OnStats func(requests, hits, errs uint64)

	// OnLog receives LOG_MESSAGE lines, if set
	OnLog func(line string)

	// OnCacheSync receives pairs pushed up by a client, if set
	OnCacheSync func(pairs map[string]string)

	log *logger.Logger
}

// NewServer builds a server around a translation source. Binary framing
// unless a codec is set with UseCodec.
func NewServer(translate TranslateFunc) *Server {
	return &Server{
		codec:     BinaryCodec{},
		translate: translate,
		conns:     make(map[string]*serverConn),
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "ipc-server")),
	}
}

// UseCodec switches the framing; must be called before Serve.
func (s *Server) UseCodec(codec Codec) {
	s.codec = codec
}

// Serve accepts connections on the listener until Close. Blocks; run it on
// its own goroutine.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return net.ErrClosed
	}
	s.listener = listener
	s.mu.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}

		session := uuid.NewString()
		sc := &serverConn{conn: conn}
		s.mu.Lock()
		s.conns[session] = sc
		s.mu.Unlock()

		s.log.Infoln("Client connected, session", session)
		go s.serveConn(session, sc)
	}
}

// Close stops accepting, sends SHUTDOWN to connected clients, and closes
// every connection. Idempotent.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	listener := s.listener
	conns := s.conns
	s.conns = make(map[string]*serverConn)
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for session, sc := range conns {
		_ = sc.write(s.codec, &Message{Type: TypeShutdown})
		sc.conn.Close()
		s.log.Debugln("Closed session", session)
	}
}

func (s *Server) serveConn(session string, sc *serverConn) {
	defer func() {
		sc.conn.Close()
		s.mu.Lock()
		delete(s.conns, session)
		s.mu.Unlock()
		s.log.Infoln("Client disconnected, session", session)
	}()

	reader := bufio.NewReader(sc.conn)

	for {
		msg, err := s.codec.Decode(reader)
		if err != nil {
			if errors.Is(err, ErrProtocol) {
				s.log.Warn("Session ", session, ": dropping malformed frame: ", err)
				continue
			}
			if !errors.Is(err, io.EOF) {
				s.log.Debugln("Session", session, "read:", err)
			}
			return
		}

		switch msg.Type {
		case TypeTranslateRequest:
			text, err := msg.Text()
			if err != nil {
				continue
			}
			// Translation sources may block; answer on a separate
			// goroutine so one slow request does not serialize the
			// session. Responses carry the request id, order is free.
			go func(id uint32, text string) {
				translated, err := s.translate(text)
				if err != nil {
					translated = text
				}
				resp, err := NewTextMessage(TypeTranslateResponse, id, translated)
				if err != nil {
					return
				}
				if err := sc.write(s.codec, resp); err != nil {
					s.log.Debugln("Session", session, "write:", err)
				}
			}(msg.RequestID, text)

		case TypeLogMessage:
			if s.OnLog != nil {
				if text, err := msg.Text(); err == nil {
					s.OnLog(text)
				}
			}

		case TypeStatsUpdate:
			if s.OnStats != nil && len(msg.Data) >= 24 {
				s.OnStats(
					binary.LittleEndian.Uint64(msg.Data[0:]),
					binary.LittleEndian.Uint64(msg.Data[8:]),
					binary.LittleEndian.Uint64(msg.Data[16:]),
				)
			}

		case TypeCacheSync:
			if s.OnCacheSync != nil {
				if pairs, err := decodeCachePairs(msg.Data); err == nil {
					s.OnCacheSync(pairs)
				}
			}
		}
	}
}

// SendConfigUpdate pushes a configuration line to every connected client
func (s *Server) SendConfigUpdate(text string) {
	msg, err := NewTextMessage(TypeConfigUpdate, 0, text)
	if err != nil {
		return
	}

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for _, sc := range s.conns {
		conns = append(conns, sc)
	}
	s.mu.Unlock()

	for _, sc := range conns {
		_ = sc.write(s.codec, msg)
	}
}
