package gorgzorg

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Receiver listens on a bound address and serves transfer sessions
// sequentially, one connection at a time. Each accepted connection lives
// until the peer sends the end sentinel or the socket closes.
type Receiver struct {
	config *ReceiverConfig

	listener net.Listener
	bindIP   string

	logger    Logger
	callbacks *Callbacks
	out       io.Writer
}

// ReceiverConfig holds configuration for a receiver.
type ReceiverConfig struct {
	// BindIP is the IPv4 address to listen on. Empty means auto-pick the
	// first private-network interface address.
	BindIP string

	// Port is the TCP port to listen on. Zero picks an ephemeral port.
	Port int

	// SaveRoot is the directory files are materialized under. Defaults
	// to the current directory. Sanitized item paths never escape it.
	SaveRoot string

	// AlwaysAccept skips every operator prompt.
	AlwaysAccept bool

	// QuitAfter stops serving after one completed session.
	QuitAfter bool

	// Output receives the user-facing transfer messages. Defaults to
	// stdout.
	Output io.Writer

	Logger    Logger
	Callbacks *Callbacks
}

// DefaultReceiverConfig returns a default receiver configuration.
func DefaultReceiverConfig() *ReceiverConfig {
	return &ReceiverConfig{
		Port:     DefaultPort,
		SaveRoot: ".",
	}
}

// NewReceiver validates the configuration and creates a receiver. When no
// bind IP is given the first private-network interface address is picked;
// it is an error if none exists.
func NewReceiver(config *ReceiverConfig) (*Receiver, error) {
	if config == nil {
		config = DefaultReceiverConfig()
	}
	if config.SaveRoot == "" {
		config.SaveRoot = "."
	}
	info, err := os.Stat(config.SaveRoot)
	if err != nil || !info.IsDir() {
		return nil, NewError(ErrInvalidArgs, config.SaveRoot+" is not a usable directory")
	}
	if config.Port < 0 || config.Port > 65535 {
		return nil, NewError(ErrInvalidArgs, "port out of range")
	}
	if config.Logger == nil {
		config.Logger = NoopLogger{}
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	bindIP := config.BindIP
	if bindIP == "" {
		bindIP, err = FindLocalAddress()
		if err != nil {
			return nil, err
		}
	} else if err := ValidateLocalIPv4(bindIP); err != nil {
		return nil, err
	}

	return &Receiver{
		config:    config,
		bindIP:    bindIP,
		logger:    config.Logger,
		callbacks: mergeCallbacks(config.Callbacks),
		out:       config.Output,
	}, nil
}

// Listen binds the configured address.
func (r *Receiver) Listen() error {
	addr := net.JoinHostPort(r.bindIP, strconv.Itoa(r.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapErr(ErrBindInUse, err,
			fmt.Sprintf("port %d is already being used in this host", r.config.Port))
	}
	r.listener = listener
	fmt.Fprintf(r.out, "Start zorging on %s...\n", listener.Addr())
	return nil
}

// Addr returns the bound address. Only valid after Listen.
func (r *Receiver) Addr() net.Addr {
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Close shuts the listener down, unblocking Serve.
func (r *Receiver) Close() error {
	if r.listener == nil {
		return nil
	}
	return r.listener.Close()
}

// Serve accepts connections sequentially and runs one session per
// connection. It returns after the first cleanly completed session when
// QuitAfter is set, on listener close, or on the first session error.
func (r *Receiver) Serve() error {
	if r.listener == nil {
		if err := r.Listen(); err != nil {
			return err
		}
	}
	defer r.listener.Close()

	for {
		conn, err := r.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return WrapErr(ErrBindInUse, err, "accept failed")
		}

		fmt.Fprintln(r.out, "Connected, preparing to receive files!")
		sess := &session{r: r, conn: conn, askForAccept: true}
		err = sess.run()
		conn.Close()
		if err != nil {
			return err
		}
		if r.config.QuitAfter {
			return nil
		}
	}
}

// session holds the per-connection receiver state. All work is sequential
// on one goroutine: read a header, decide, materialize, reply, repeat.
type session struct {
	r    *Receiver
	conn net.Conn

	bytesReceived int64
	totalSize     int64

	receivingDir bool

	// masterDir is the walk's root once its marker has been accepted;
	// empty when no walk is active.
	masterDir    string
	askForAccept bool
}

func (s *session) run() error {
	for {
		hdr, err := ReadHeader(s.conn)
		if err == io.EOF {
			// The peer may simply hang up after a denial; a close
			// at item start ends the session cleanly.
			return nil
		}
		if err != nil {
			if _, ok := err.(*Error); ok {
				return err
			}
			return WrapErr(ErrPeerClosed, err, "peer went away mid-header")
		}

		if hdr.IsEnd() {
			fmt.Fprintln(s.r.out, "Zorging goodbye!")
			s.reset()
			return nil
		}

		if err := s.receiveItem(hdr); err != nil {
			return err
		}
	}
}

func (s *session) reset() {
	s.bytesReceived = 0
	s.totalSize = 0
	s.receivingDir = false
	s.masterDir = ""
	s.askForAccept = true
}

// receiveItem handles one framed item: prompt policy, path sanitization,
// materialization and the two control replies.
func (s *session) receiveItem(hdr Header) error {
	wirePath := hdr.Path
	s.receivingDir = false
	if hdr.IsDir() {
		s.receivingDir = true
		wirePath = strings.TrimPrefix(wirePath, DirTag)
	}

	parent, base := splitWirePath(wirePath)
	isMaster := base == "."
	bodyLen := hdr.BodyLen()

	// Ask at most once per top-level item: every lone-file send prompts,
	// a directory walk prompts only at its walk-root marker.
	if !s.r.config.AlwaysAccept && s.askForAccept {
		name := base
		if isMaster {
			name = parent
		}
		if !s.r.callbacks.OnAccept(name, bodyLen) {
			s.logger().Info("rejected %s", name)
			return s.reply(ReplyKoSend)
		}
	}
	if err := s.reply(ReplyOkSend); err != nil {
		return err
	}
	if !hdr.Single {
		s.askForAccept = false
	}

	clean := SanitizePath(wirePath)

	if isMaster {
		// Walk-root marker: remember the master dir and create it.
		// A walk rooted in the sender's cwd sanitizes to nothing and
		// needs no directory of its own.
		s.masterDir = clean
		if clean != "" {
			if err := os.MkdirAll(s.target(clean), 0o755); err != nil {
				return WrapErr(ErrWriteDest, err, "could not create "+clean)
			}
		}
		return s.reply(ReplyOk)
	}

	if s.masterDir != "" && clean != s.masterDir && !strings.HasPrefix(clean, s.masterDir+"/") {
		clean = s.masterDir + "/" + clean
	}
	if clean == "" {
		return NewError(ErrPeerClosed, "item path sanitized to nothing")
	}
	target := s.target(clean)

	if s.receivingDir {
		s.logger().Debug("creating directory %s", target)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return WrapErr(ErrWriteDest, err, "could not create "+clean)
		}
		return s.reply(ReplyOk)
	}

	return s.receiveFile(base, target, bodyLen)
}

// receiveFile streams one file body to disk and acknowledges it.
func (s *session) receiveFile(base, target string, bodyLen int64) error {
	fmt.Fprintf(s.r.out, "Zorging %s\n", base)
	s.r.callbacks.OnItemStart(base, bodyLen)

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapErr(ErrWriteDest, err, "could not create "+dir)
		}
	}
	f, err := os.Create(target)
	if err != nil {
		return WrapErr(ErrWriteDest, err, "could not create "+target)
	}
	defer f.Close()

	s.totalSize = bodyLen
	s.bytesReceived = 0

	buf := make([]byte, 32*1024)
	for s.bytesReceived < s.totalSize {
		chunk := int64(len(buf))
		if remaining := s.totalSize - s.bytesReceived; remaining < chunk {
			chunk = remaining
		}
		n, err := s.conn.Read(buf[:chunk])
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return WrapErr(ErrWriteDest, werr, "could not write "+target)
			}
			s.bytesReceived += int64(n)
			s.r.callbacks.OnProgress(base, s.bytesReceived, s.totalSize)
		}
		// A read may deliver the final bytes together with the close;
		// the file is complete either way.
		if err != nil && s.bytesReceived < s.totalSize {
			return WrapErr(ErrPeerClosed, err, "peer went away while zorging "+base)
		}
	}

	if err := f.Close(); err != nil {
		return WrapErr(ErrWriteDest, err, "could not write "+target)
	}

	fmt.Fprintln(s.r.out, "Zorging completed")
	fmt.Fprintf(s.r.out, "Saved in %s\n", target)
	s.r.callbacks.OnItemComplete(base, s.totalSize, 0)

	s.bytesReceived = 0
	s.totalSize = 0
	return s.reply(ReplyOk)
}

func (s *session) reply(reply Reply) error {
	if err := WriteReply(s.conn, reply); err != nil {
		return WrapErr(ErrPeerClosed, err, "peer went away while replying")
	}
	return nil
}

func (s *session) target(clean string) string {
	return filepath.Join(s.r.config.SaveRoot, filepath.FromSlash(clean))
}

func (s *session) logger() Logger {
	return s.r.logger
}

// splitWirePath splits a logical path on its last slash.
func splitWirePath(p string) (parent, base string) {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}
