package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const sessionFormatVersionCurrent = 1

// Session is a server-tracked record binding a token to its owning user,
// the client IP observed at login, and an expiry window. Sessions are
// immutable once created; re-authentication replaces rather than extends.
type Session struct {
	// Token is the raw header value the client presents. It is the store
	// lookup key and is never serialized into the blob.
	Token string

	Username string
	ClientIP string

	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the session's expiry window has closed. A
// session is valid only strictly before ExpiresAt.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// Encode serializes a session into the versioned binary blob stored in
// Redis: version byte, length-prefixed username and client IP, then
// big-endian CreatedAt and ExpiresAt.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if len(s.Username) > 255 {
		return nil, errors.New("username too long")
	}
	buf.WriteByte(byte(len(s.Username)))
	buf.WriteString(s.Username)

	if len(s.ClientIP) > 255 {
		return nil, errors.New("client IP too long")
	}
	buf.WriteByte(byte(len(s.ClientIP)))
	buf.WriteString(s.ClientIP)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode deserializes a session blob. The Token field is not part of the
// blob; callers set it after decoding.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	nameLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	username := make([]byte, nameLen)
	if _, err := io.ReadFull(reader, username); err != nil {
		return nil, err
	}
	s.Username = string(username)

	ipLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	clientIP := make([]byte, ipLen)
	if _, err := io.ReadFull(reader, clientIP); err != nil {
		return nil, err
	}
	s.ClientIP = string(clientIP)

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
