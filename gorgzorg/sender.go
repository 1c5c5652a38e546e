package gorgzorg

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sender drives one connect-send-close session against a zorging peer.
// All items are fully serialized: header, accept reply, body, completion
// reply, then the next item, and finally the end sentinel.
type Sender struct {
	config *SenderConfig

	conn   net.Conn
	tokens *TokenReader

	tracker   *ProgressTracker
	logger    Logger
	callbacks *Callbacks
	out       io.Writer

	bytesSent int64
}

// SenderConfig holds configuration for a sender session.
type SenderConfig struct {
	// Target is the receiver's IPv4 address. It must satisfy the
	// local-network policy.
	Target string

	// Port is the receiver's TCP port.
	Port int

	// Path is the file, directory, or glob (dir/*.ext) to send.
	Path string

	// Archive collapses the source into a tar artifact before sending.
	Archive ArchiveMode

	// ChunkSize is the body chunk size in bytes.
	ChunkSize int

	// ConnectTimeout bounds the initial connect.
	ConnectTimeout time.Duration

	// Verbose prints timing and throughput after the session.
	Verbose bool

	// Output receives the user-facing transfer messages. Defaults to
	// stdout.
	Output io.Writer

	Logger    Logger
	Callbacks *Callbacks
}

// DefaultSenderConfig returns a default sender configuration.
func DefaultSenderConfig() *SenderConfig {
	return &SenderConfig{
		Port:           DefaultPort,
		ChunkSize:      DefaultChunkSize,
		ConnectTimeout: 5 * time.Second,
	}
}

// NewSender validates the configuration and creates a sender session.
// The target address is checked against the local-network policy before
// any socket is opened.
func NewSender(config *SenderConfig) (*Sender, error) {
	if config == nil {
		return nil, NewError(ErrInvalidArgs, "nil sender config")
	}
	if config.Path == "" {
		return nil, NewError(ErrInvalidArgs, "no path to gorg")
	}
	if err := ValidateLocalIPv4(config.Target); err != nil {
		return nil, err
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, NewError(ErrInvalidArgs, "port out of range")
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = NoopLogger{}
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	s := &Sender{
		config:    config,
		logger:    config.Logger,
		callbacks: mergeCallbacks(config.Callbacks),
		out:       config.Output,
	}
	s.tracker = NewProgressTracker(func(path string, transferred, total int64) {
		s.callbacks.OnProgress(path, transferred, total)
	}, 0)
	return s, nil
}

// Run executes the session: resolve the source, connect, stream every item,
// then write the end sentinel. A receiver denial surfaces as a Cancelled
// error after cleanup; the temporary archive, if any, is deleted on every
// exit path.
func (s *Sender) Run(ctx context.Context) error {
	source, pattern := splitGlob(s.config.Path)

	archived := false
	if s.config.Archive != ArchiveNone {
		artifact, err := CreateArchive(source, pattern, s.config.Archive, s.logger)
		if err != nil {
			return err
		}
		defer os.Remove(artifact)
		source, pattern = artifact, ""
		archived = true
	}

	info, err := os.Stat(source)
	if err != nil {
		return WrapErr(ErrOpenSource, err, source+" could not be opened")
	}

	addr := net.JoinHostPort(s.config.Target, strconv.Itoa(s.config.Port))
	conn, err := net.DialTimeout("tcp", addr, s.config.ConnectTimeout)
	if err != nil {
		return WrapErr(ErrConnectFailed, err,
			fmt.Sprintf("it seems there is no one zorging on %s", addr))
	}
	defer conn.Close()

	s.conn = conn
	s.tokens = NewTokenReader(conn)
	start := time.Now()

	if info.IsDir() {
		err = s.sendTree(ctx, source, pattern)
	} else {
		logical := filepath.ToSlash(source)
		if archived {
			logical = filepath.Base(source)
		}
		var f *os.File
		f, err = os.Open(source)
		if err != nil {
			return WrapErr(ErrOpenSource, err, source+" could not be opened")
		}
		err = s.sendFile(ctx, logical, f, info.Size(), true)
		f.Close()
	}

	if err != nil {
		if IsCancelled(err) {
			fmt.Fprintln(s.out, "Gorging was cancelled by the other side")
		}
		return err
	}

	if err := s.writeEnd(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Gorging goodbye!")

	if s.config.Verbose {
		elapsed := time.Since(start)
		fmt.Fprintf(s.out, "Gorged %s in %.2fs (%s)\n",
			FormatSize(s.bytesSent), elapsed.Seconds(), throughput(s.bytesSent, elapsed))
	}
	return nil
}

// sendTree streams a directory walk: the walk-root marker first, then every
// directory and file below it in enumeration order. Unopenable files are
// skipped with a warning; their headers are never sent.
func (s *Sender) sendTree(ctx context.Context, root string, pattern string) error {
	rootSlash := filepath.ToSlash(root)
	if err := s.sendMarker(rootSlash + "/."); err != nil {
		return err
	}

	items, err := Enumerate(root, pattern)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.Dir {
			if err := s.sendMarker(item.Path); err != nil {
				return err
			}
			continue
		}
		f, err := os.Open(item.Path)
		if err != nil {
			// Per-item skip: nothing about the item has hit the
			// wire yet.
			fmt.Fprintf(s.out, "ERROR: %s could not be opened\n", item.Path)
			continue
		}
		err = s.sendFile(ctx, item.Path, f, item.Size, false)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// sendMarker announces a directory. Markers carry no body but still go
// through the full accept/complete handshake.
func (s *Sender) sendMarker(logical string) error {
	s.logger.Debug("sending dir marker %s", logical)
	if err := s.writeHeader(DirTag+logical, 0, false); err != nil {
		return err
	}
	if err := s.awaitAccept(); err != nil {
		return err
	}
	return s.awaitOk()
}

// sendFile streams one regular file: header, accept reply, body in chunks,
// completion reply. The caller owns f.
func (s *Sender) sendFile(ctx context.Context, logical string, f *os.File, size int64, single bool) error {
	fmt.Fprintf(s.out, "Gorging %s\n", logical)
	s.callbacks.OnItemStart(logical, size)
	s.tracker.Start(logical, size)

	if err := s.writeHeader(logical, size, single); err != nil {
		return err
	}
	if err := s.awaitAccept(); err != nil {
		return err
	}

	buf := make([]byte, s.config.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := s.conn.Write(buf[:n]); werr != nil {
				return WrapErr(ErrPeerClosed, werr, "peer went away while gorging "+logical)
			}
			s.bytesSent += int64(n)
			s.tracker.Add(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// The header already promised size bytes; a failed read
			// here leaves the stream unrecoverable.
			return WrapErr(ErrPeerClosed, err, "reading "+logical)
		}
	}

	if err := s.awaitOk(); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "Gorging completed")
	s.callbacks.OnItemComplete(logical, size, s.tracker.Complete())
	return nil
}

func (s *Sender) writeHeader(path string, bodyLen int64, single bool) error {
	frame := EncodeHeader(path, bodyLen, single)
	if _, err := s.conn.Write(frame); err != nil {
		return WrapErr(ErrPeerClosed, err, "peer went away while sending a header")
	}
	s.bytesSent += int64(len(frame))
	return nil
}

// writeEnd writes the end sentinel. No reply is awaited; the session is
// over as soon as the bytes are on the wire.
func (s *Sender) writeEnd() error {
	return s.writeHeader(EndSentinel, 0, true)
}

// awaitAccept blocks until the receiver answers the last header. A denial
// aborts the whole session, not just the current item.
func (s *Sender) awaitAccept() error {
	reply, err := s.tokens.ReadAccept()
	if err != nil {
		return replyError(err)
	}
	if reply == ReplyKoSend {
		return NewError(ErrCancelled, "the other side did not accept the transfer")
	}
	return nil
}

// awaitOk blocks until the receiver confirms the item is fully written.
func (s *Sender) awaitOk() error {
	if _, err := s.tokens.ReadOk(); err != nil {
		return replyError(err)
	}
	return nil
}

func replyError(err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return WrapErr(ErrPeerClosed, err, "peer went away while awaiting a reply")
}

// splitGlob separates a source argument into its literal path and an
// optional filename filter, e.g. "docs/*.txt" into "docs" and "*.txt".
func splitGlob(p string) (string, string) {
	base := filepath.Base(p)
	if strings.ContainsAny(base, "*?[") {
		dir := filepath.Dir(p)
		return dir, base
	}
	return p, ""
}
