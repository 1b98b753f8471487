package nats

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedURL selects an in-process server instead of a remote one.
const EmbeddedURL = "embedded"

var errNotReady = errors.New("nats server failed to start within timeout")

// StartEmbedded starts an in-process NATS server without network listeners
// and connects to it.
func StartEmbedded() (*server.Server, *nats.Conn, error) {
	ns, err := server.NewServer(&server.Options{DontListen: true, NoSigs: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create nats server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, nil, errNotReady
	}

	nc, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("failed to connect in-process: %w", err)
	}
	return ns, nc, nil
}

// Connect dials url, or starts an embedded server when url is EmbeddedURL.
// The returned close function releases whatever was started.
func Connect(url string) (*nats.Conn, func(), error) {
	if url == EmbeddedURL {
		ns, nc, err := StartEmbedded()
		if err != nil {
			return nil, nil, err
		}
		return nc, func() { Shutdown(nc, ns) }, nil
	}

	nc, err := nats.Connect(url, nats.Name("onboard"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return nc, func() { Shutdown(nc, nil) }, nil
}

// Shutdown drains the connection and stops the server, if any.
func Shutdown(nc *nats.Conn, ns *server.Server) {
	if nc != nil {
		done := make(chan error, 1)
		go func() { done <- nc.Drain() }()
		select {
		case err := <-done:
			if err != nil {
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			nc.Close()
		}
	}
	if ns != nil {
		ns.Shutdown()
		ns.WaitForShutdown()
	}
}
