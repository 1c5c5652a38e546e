package gorgzorg

import (
	"encoding/binary"
	"io"
	"strings"
)

// Header is the on-wire envelope of one item.
//
// Encoding is binary, big-endian, fixed field order: TotalLen and HeaderLen
// as signed 64-bit integers, Path as a 32-bit length prefix followed by its
// UTF-8 bytes, and Single as one byte (0x01/0x00). TotalLen is the sum of
// header and body bytes; HeaderLen is the header's own encoded size.
type Header struct {
	TotalLen  int64
	HeaderLen int64
	Path      string
	Single    bool
}

// headerOverhead is the encoded size of everything but the path bytes:
// two int64 sizes, the uint32 path length and the single-transfer byte.
const headerOverhead = 8 + 8 + 4 + 1

// BodyLen returns the number of body bytes that follow the header.
func (h Header) BodyLen() int64 {
	return h.TotalLen - h.HeaderLen
}

// IsEnd reports whether the header is the end-of-transfer sentinel.
func (h Header) IsEnd() bool {
	return h.Path == EndSentinel
}

// IsDir reports whether the header announces a directory item.
func (h Header) IsDir() bool {
	return strings.HasPrefix(h.Path, DirTag)
}

// EncodeHeader encodes one item header. The frame is first laid out with
// zero placeholders for the two sizes, then the true TotalLen and HeaderLen
// are patched into the first sixteen bytes. The output is byte-identical
// for every implementation of the protocol.
func EncodeHeader(path string, bodyLen int64, single bool) []byte {
	buf := make([]byte, headerOverhead+len(path))

	binary.BigEndian.PutUint32(buf[16:], uint32(len(path)))
	copy(buf[20:], path)
	if single {
		buf[len(buf)-1] = 0x01
	}

	headerLen := int64(len(buf))
	binary.BigEndian.PutUint64(buf[0:], uint64(headerLen+bodyLen))
	binary.BigEndian.PutUint64(buf[8:], uint64(headerLen))

	return buf
}

// ReadHeader decodes one item header from r. It reads the two sizes, then
// the path by its length prefix, then the single-transfer byte. Frames whose
// sizes do not add up, or whose path length is implausible, are rejected.
func ReadHeader(r io.Reader) (Header, error) {
	var fixed [20]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, err
	}

	h := Header{
		TotalLen:  int64(binary.BigEndian.Uint64(fixed[0:])),
		HeaderLen: int64(binary.BigEndian.Uint64(fixed[8:])),
	}

	pathLen := binary.BigEndian.Uint32(fixed[16:])
	if pathLen > maxPathLen {
		return Header{}, NewError(ErrPeerClosed, "header path length out of range")
	}
	if h.HeaderLen != headerOverhead+int64(pathLen) || h.TotalLen < h.HeaderLen {
		return Header{}, NewError(ErrPeerClosed, "header sizes do not add up")
	}

	rest := make([]byte, pathLen+1)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Header{}, err
	}

	h.Path = string(rest[:pathLen])
	h.Single = rest[pathLen] == 0x01
	return h, nil
}

// Reply is one control token decoded from the reverse channel.
type Reply int

const (
	// ReplyOkSend accepts the announced item.
	ReplyOkSend Reply = iota

	// ReplyKoSend rejects the announced item and aborts the session.
	ReplyKoSend

	// ReplyOk acknowledges a fully received item.
	ReplyOk
)

func (r Reply) String() string {
	switch r {
	case ReplyOkSend:
		return tokenOkSend
	case ReplyKoSend:
		return tokenKoSend
	case ReplyOk:
		return tokenOk
	default:
		return "UNKNOWN"
	}
}

// WriteReply writes one control token to w as raw bytes.
func WriteReply(w io.Writer, r Reply) error {
	_, err := io.WriteString(w, r.String())
	return err
}

// TokenReader parses the reverse channel as a byte stream of control tokens.
//
// The protocol fixes which tokens can answer each header, so the caller
// states what it expects and the reader matches only against that set. This
// is what disambiguates Z_OK from the Z_OK_SEND it prefixes: while an accept
// reply is pending, a buffered Z_OK is an incomplete Z_OK_SEND and the
// reader waits for the rest; while a completion reply is pending it is the
// whole token. Back-to-back tokens coalesced into a single read fall out as
// separate replies, exactly as if they had arrived apart.
type TokenReader struct {
	r   io.Reader
	buf []byte
}

// NewTokenReader returns a TokenReader over r.
func NewTokenReader(r io.Reader) *TokenReader {
	return &TokenReader{r: r}
}

type replyToken struct {
	reply Reply
	text  string
}

var (
	acceptTokens = []replyToken{
		{ReplyOkSend, tokenOkSend},
		{ReplyKoSend, tokenKoSend},
	}
	completionTokens = []replyToken{
		{ReplyOk, tokenOk},
	}
)

// ReadAccept returns the receiver's answer to an announced item, either
// ReplyOkSend or ReplyKoSend.
func (t *TokenReader) ReadAccept() (Reply, error) {
	return t.read(acceptTokens)
}

// ReadOk consumes the ReplyOk acknowledging a fully received item.
func (t *TokenReader) ReadOk() (Reply, error) {
	return t.read(completionTokens)
}

// read returns the next token out of expected, reading from the underlying
// stream as needed. Bytes that cannot grow into an expected token are a
// protocol violation and poison the session.
func (t *TokenReader) read(expected []replyToken) (Reply, error) {
	for {
		for _, tok := range expected {
			if strings.HasPrefix(string(t.buf), tok.text) {
				t.buf = t.buf[len(tok.text):]
				return tok.reply, nil
			}
		}
		if !couldGrow(t.buf, expected) {
			return 0, NewError(ErrPeerClosed, "unexpected bytes on reply channel")
		}

		chunk := make([]byte, 64)
		n, err := t.r.Read(chunk)
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

// couldGrow reports whether buf is a proper prefix of some expected token.
func couldGrow(buf []byte, expected []replyToken) bool {
	s := string(buf)
	for _, tok := range expected {
		if len(s) < len(tok.text) && strings.HasPrefix(tok.text, s) {
			return true
		}
	}
	return false
}
