// Package gorgzorg implements the GorgZorg point-to-point file transfer
// protocol.
//
// GorgZorg runs symmetrically on two hosts of a private IPv4 network. The
// sender ("gorg") opens a TCP connection to the receiver ("zorg") and streams
// one or more files and/or directory trees as a flat sequence of framed
// items; the receiver reconstructs the file tree under a configurable root
// directory, optionally prompting the operator before accepting each
// top-level item.
//
// The package is designed as a library: the Sender and Receiver types drive
// one session each, and callback hooks cover operator prompting and progress
// tracking. The cmd/gorgzorg binary wires both roles behind the classic CLI.
package gorgzorg

// Version is displayed by --version. It is never exchanged on the wire;
// the protocol has no version negotiation.
const Version = "0.1"

// Control tokens sent by the receiver on the reverse channel. They are raw
// ASCII bytes with no framing; the sender parses the channel greedily so
// back-to-back tokens coalesced into one TCP read still yield distinct
// events.
const (
	// tokenOkSend accepts the item announced by the last header.
	tokenOkSend = "Z_OK_SEND"

	// tokenKoSend rejects the item and aborts the whole session.
	tokenKoSend = "Z_KO_SEND"

	// tokenOk acknowledges that the item has been fully received.
	tokenOk = "Z_OK"
)

// DirTag is the ASCII prefix that marks a header path as a directory item.
// The receiver strips it before materializing the path.
const DirTag = "<^dir$>:"

// EndSentinel is the header path that terminates a session. Its frame
// carries zero sizes and no body.
const EndSentinel = "<[--Finis_tr@nslationi$--]>"

// Defaults shared by both roles.
const (
	// DefaultPort is the TCP port used when -p is not given.
	DefaultPort = 10000

	// DefaultChunkSize is the body chunk size in bytes (-bs overrides,
	// in KiB).
	DefaultChunkSize = 4 * 1024

	// maxPathLen bounds the path length accepted in a decoded header.
	// Anything larger means the peer is not speaking this protocol.
	maxPathLen = 64 * 1024
)
