package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const sessionFormatVersionCurrent = 1

const maxTokenLength = 1<<16 - 1

// Encode serializes a session record into its compact binary form.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if len(s.Username) == 0 || len(s.Username) > 255 {
		return nil, errors.New("invalid username length")
	}
	buf.WriteByte(byte(len(s.Username)))
	buf.WriteString(s.Username)

	if len(s.AccessToken) == 0 || len(s.AccessToken) > maxTokenLength {
		return nil, errors.New("invalid access token length")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.AccessToken))); err != nil {
		return nil, err
	}
	buf.WriteString(s.AccessToken)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary session record. It rejects unknown versions and
// truncated input.
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

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if userLen == 0 {
		return nil, errors.New("empty username")
	}
	username := make([]byte, userLen)
	if _, err := io.ReadFull(reader, username); err != nil {
		return nil, err
	}
	s.Username = string(username)

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	if tokenLen == 0 {
		return nil, errors.New("empty access token")
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.AccessToken = string(token)

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing session data")
	}

	return s, nil
}
