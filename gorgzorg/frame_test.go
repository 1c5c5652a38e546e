package gorgzorg

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHeaderGolden(t *testing.T) {
	// 8+8+4+1 bytes of overhead plus one path byte: header_len 22,
	// total_len 25 with a 3-byte body.
	frame := EncodeHeader("a", 3, true)

	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 25, // total_len
		0, 0, 0, 0, 0, 0, 0, 22, // header_len
		0, 0, 0, 1, // path length
		'a',
		0x01, // single_transfer
	}
	require.Equal(t, want, frame)
}

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		bodyLen int64
		single  bool
	}{
		{"lone file", "hello.txt", 13, true},
		{"walk file", "A/sub/c.bin", 1024, false},
		{"dir marker", DirTag + "A/sub", 0, false},
		{"walk root", DirTag + "A/.", 0, false},
		{"end sentinel", EndSentinel, 0, true},
		{"empty body", "empty.dat", 0, true},
		{"utf-8 path", "ü/ファイル.txt", 7, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := EncodeHeader(tc.path, tc.bodyLen, tc.single)

			hdr, err := ReadHeader(bytes.NewReader(frame))
			require.NoError(t, err)

			assert.Equal(t, tc.path, hdr.Path)
			assert.Equal(t, tc.single, hdr.Single)
			assert.Equal(t, tc.bodyLen, hdr.BodyLen())
			assert.Equal(t, int64(len(frame)), hdr.HeaderLen)
			assert.Equal(t, hdr.HeaderLen+tc.bodyLen, hdr.TotalLen)
		})
	}
}

func TestHeaderPredicates(t *testing.T) {
	end, err := ReadHeader(bytes.NewReader(EncodeHeader(EndSentinel, 0, true)))
	require.NoError(t, err)
	assert.True(t, end.IsEnd())
	assert.False(t, end.IsDir())

	dir, err := ReadHeader(bytes.NewReader(EncodeHeader(DirTag+"A/sub", 0, false)))
	require.NoError(t, err)
	assert.True(t, dir.IsDir())
	assert.False(t, dir.IsEnd())
}

func TestReadHeaderRejectsBadFrames(t *testing.T) {
	t.Run("sizes do not add up", func(t *testing.T) {
		frame := EncodeHeader("a", 3, true)
		frame[15] = 99 // corrupt header_len
		_, err := ReadHeader(bytes.NewReader(frame))
		require.Error(t, err)
	})

	t.Run("implausible path length", func(t *testing.T) {
		frame := EncodeHeader("a", 3, true)
		frame[16] = 0xFF
		_, err := ReadHeader(bytes.NewReader(frame))
		require.Error(t, err)
	})

	t.Run("truncated frame", func(t *testing.T) {
		frame := EncodeHeader("hello.txt", 13, true)
		_, err := ReadHeader(bytes.NewReader(frame[:10]))
		require.Error(t, err)
	})
}

// scriptReader returns one scripted chunk per Read call, then EOF. It models
// TCP delivering reply tokens split or coalesced at arbitrary boundaries.
type scriptReader struct {
	chunks [][]byte
}

func (s *scriptReader) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.chunks[0])
	s.chunks[0] = s.chunks[0][n:]
	if len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	return n, nil
}

func script(chunks ...string) *TokenReader {
	sr := &scriptReader{}
	for _, c := range chunks {
		sr.chunks = append(sr.chunks, []byte(c))
	}
	return NewTokenReader(sr)
}

// tokenOp is one expected read on a TokenReader: an accept reply for a
// pending header, or the completion acknowledgement.
type tokenOp struct {
	accept bool
	want   Reply
}

func TestTokenReader(t *testing.T) {
	accept := func(want Reply) tokenOp { return tokenOp{accept: true, want: want} }
	done := tokenOp{want: ReplyOk}

	tests := []struct {
		name   string
		chunks []string
		ops    []tokenOp
	}{
		{"single ok_send", []string{"Z_OK_SEND"}, []tokenOp{accept(ReplyOkSend)}},
		{"single ko_send", []string{"Z_KO_SEND"}, []tokenOp{accept(ReplyKoSend)}},
		{"bare ok", []string{"Z_OK"}, []tokenOp{done}},
		{"coalesced ok_send+ok", []string{"Z_OK_SENDZ_OK"}, []tokenOp{accept(ReplyOkSend), done}},
		{"coalesced ok+ok", []string{"Z_OKZ_OK"}, []tokenOp{done, done}},
		{"split mid-token", []string{"Z_OK_S", "END"}, []tokenOp{accept(ReplyOkSend)}},
		{"split after ok prefix", []string{"Z_OK", "_SEND"}, []tokenOp{accept(ReplyOkSend)}},
		{"split then bare ok", []string{"Z_OK_SEN", "D", "Z_OK"}, []tokenOp{accept(ReplyOkSend), done}},
		{"byte at a time accept", []string{"Z", "_", "O", "K", "_", "S", "E", "N", "D"}, []tokenOp{accept(ReplyOkSend)}},
		{"byte at a time deny", []string{"Z", "_", "K", "O", "_", "S", "E", "N", "D"}, []tokenOp{accept(ReplyKoSend)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := script(tc.chunks...)
			for _, op := range tc.ops {
				var got Reply
				var err error
				if op.accept {
					got, err = tr.ReadAccept()
				} else {
					got, err = tr.ReadOk()
				}
				require.NoError(t, err)
				assert.Equal(t, op.want, got)
			}
		})
	}
}

func TestTokenReaderCoalescedEqualsSeparate(t *testing.T) {
	for _, tr := range []*TokenReader{
		script("Z_OK_SENDZ_OK"),
		script("Z_OK_SEND", "Z_OK"),
	} {
		got, err := tr.ReadAccept()
		require.NoError(t, err)
		assert.Equal(t, ReplyOkSend, got)

		got, err = tr.ReadOk()
		require.NoError(t, err)
		assert.Equal(t, ReplyOk, got)
	}
}

func TestTokenReaderRejectsGarbage(t *testing.T) {
	_, err := script("HELLO").ReadAccept()
	require.Error(t, err)
	assert.True(t, IsPeerClosed(err))

	_, err = script("Z_NO").ReadOk()
	require.Error(t, err)
	assert.True(t, IsPeerClosed(err))
}

func TestTokenReaderEOF(t *testing.T) {
	tr := script("Z_OK_SEND")
	_, err := tr.ReadAccept()
	require.NoError(t, err)
	_, err = tr.ReadOk()
	require.ErrorIs(t, err, io.EOF)

	// A token cut off by the close is a failure, not a shorter token.
	_, err = script("Z_OK").ReadAccept()
	require.ErrorIs(t, err, io.EOF)
}
