package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const sessionFormatVersionCurrent = 1

// maxTokenLen bounds decoded token lengths so corrupt blobs cannot force huge allocations.
const maxTokenLen = 1 << 20

var (
	ErrInvalidVersion = errors.New("invalid session version")
	ErrFieldTooLong   = errors.New("session field too long")
)

func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(1 + 2 + len(s.SessionID) + 2 + len(s.UserID) + 8 + len(s.AccessToken) + len(s.RefreshToken) + 16)

	buf.WriteByte(sessionFormatVersionCurrent)

	if err := writeString16(&buf, s.SessionID); err != nil {
		return nil, err
	}
	if err := writeString16(&buf, s.UserID); err != nil {
		return nil, err
	}
	if err := writeString32(&buf, s.AccessToken); err != nil {
		return nil, err
	}
	if err := writeString32(&buf, s.RefreshToken); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, ErrInvalidVersion
	}

	s := &Session{}
	if s.SessionID, err = readString16(reader); err != nil {
		return nil, err
	}
	if s.UserID, err = readString16(reader); err != nil {
		return nil, err
	}
	if s.AccessToken, err = readString32(reader); err != nil {
		return nil, err
	}
	if s.RefreshToken, err = readString32(reader); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}

func writeString16(buf *bytes.Buffer, v string) error {
	if len(v) > math.MaxUint16 {
		return ErrFieldTooLong
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(v))); err != nil {
		return err
	}
	buf.WriteString(v)
	return nil
}

func writeString32(buf *bytes.Buffer, v string) error {
	if len(v) > maxTokenLen {
		return ErrFieldTooLong
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(v))); err != nil {
		return err
	}
	buf.WriteString(v)
	return nil
}

func readString16(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	return readN(r, int(n))
}

func readString32(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if n > maxTokenLen {
		return "", ErrFieldTooLong
	}
	return readN(r, int(n))
}

func readN(r *bytes.Reader, n int) (string, error) {
	if n > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
