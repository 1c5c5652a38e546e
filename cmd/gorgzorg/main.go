package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gorgzorg/go-gorgzorg/gorgzorg"
)

const versionString = "gorgzorg version " + gorgzorg.Version

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	list := newArgumentList(args)

	if list.getSwitch("-h") {
		showUsage()
		return 0
	}
	if list.getSwitch("--version") {
		fmt.Println(versionString)
		return 0
	}

	verbose := list.getSwitch("-v")

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	logger := gorgzorg.NewLogrusLogger(log)

	port := gorgzorg.DefaultPort
	if p := list.getSwitchArg("-p", ""); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			fmt.Fprintf(os.Stderr, "ERROR: %s is not a valid port\n", p)
			return 1
		}
		port = n
	}

	if bindIP, zorg := list.getOptionalSwitchArg("-z"); zorg {
		return runReceiver(list, bindIP, port, logger)
	}
	return runSender(list, port, verbose, logger)
}

func runReceiver(list *argumentList, bindIP string, port int, logger gorgzorg.Logger) int {
	config := gorgzorg.DefaultReceiverConfig()
	config.BindIP = bindIP
	config.Port = port
	config.AlwaysAccept = list.getSwitch("-y")
	config.QuitAfter = list.getSwitch("-q")
	config.Logger = logger
	config.Callbacks = &gorgzorg.Callbacks{OnAccept: promptAccept}

	if dir := list.getSwitchArg("-d", ""); dir != "" {
		config.SaveRoot = dir
	}

	receiver, err := gorgzorg.NewReceiver(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	if err := receiver.Listen(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	go func() {
		waitForSignal()
		receiver.Close()
	}()

	if err := receiver.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func runSender(list *argumentList, port int, verbose bool, logger gorgzorg.Logger) int {
	target := list.getSwitchArg("-c", "")
	path := list.getSwitchArg("-g", "")
	useTar := list.getSwitch("-tar")
	useZip := list.getSwitch("-zip")
	chunkKiB := list.getSwitchArg("-bs", "")

	if target == "" || path == "" {
		showUsage()
		return 1
	}
	if filepath.IsAbs(path) {
		fmt.Fprintln(os.Stderr, "ERROR: GorgZorg only works with relative files or paths")
		return 1
	}

	config := gorgzorg.DefaultSenderConfig()
	config.Target = target
	config.Port = port
	config.Path = path
	config.Verbose = verbose
	config.Logger = logger

	switch {
	case useZip:
		config.Archive = gorgzorg.ArchiveTarGzip
	case useTar:
		config.Archive = gorgzorg.ArchiveTar
	}

	if chunkKiB != "" {
		n, err := strconv.Atoi(chunkKiB)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "ERROR: %s is not a valid chunk size\n", chunkKiB)
			return 1
		}
		config.ChunkSize = n * 1024
	}

	sender, err := gorgzorg.NewSender(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := sender.Run(ctx); err != nil {
		if gorgzorg.IsCancelled(err) {
			// A denial is a normal outcome on the sender.
			return 0
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitForSignal()
		cancel()
	}()
	return ctx, cancel
}

func showUsage() {
	fmt.Fprintf(os.Stderr, `GorgZorg, a simple CLI network file transfer tool

Usage: gorgzorg [options]

Options:
  -h               show this help message
  -c <IP>          set IPv4 address to connect to (gorg mode)
  -g <path>        set a relative file, directory or glob to gorg (send)
  -z [IP]          enter zorg mode (listen). If IP is omitted, GorgZorg will guess it
  -d <dir>         save zorged files into this directory (must exist)
  -p <n>           set port to connect or listen to (default is %d)
  -tar             archive the contents of the path before sending
  -zip             gzip the archived contents of the path before sending
  -y               accept every incoming transfer without asking
  -q               quit zorg mode after one completed transfer
  -bs <n>          set gorging chunk size, in KiB (default is 4)
  -v               verbose mode
  --version        show version

Examples:
  # Send contents of the Test directory to IP 192.168.0.1
  gorgzorg -c 192.168.0.1 -g Test

  # Send the txt files of the docs directory as a gzipped tarball
  gorgzorg -c 192.168.0.5 -g 'docs/*.txt' -zip

  # Start listening on port 20000 with address 192.168.10.16
  gorgzorg -p 20000 -z 192.168.10.16

  # Accept every transfer into /tmp and exit after the first one
  gorgzorg -z -y -q -d /tmp

Version: %s
`, gorgzorg.DefaultPort, gorgzorg.Version)
}
