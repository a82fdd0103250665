package httputil

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// fingerprintTransport speaks TLS with a Chrome ClientHello so that
// Cloudflare-fronted embed hosts treat us like a browser.
type fingerprintTransport struct {
	dialer      *net.Dialer
	h2Transport *http2.Transport
	plain       http.RoundTripper
}

func newFingerprintTransport(timeout time.Duration) *fingerprintTransport {
	return &fingerprintTransport{
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 60 * time.Second,
		},
		h2Transport: &http2.Transport{},
		plain:       http.DefaultTransport,
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.plain.RoundTrip(req)
	}

	addr := req.URL.Host
	if req.URL.Port() == "" {
		addr = net.JoinHostPort(req.URL.Hostname(), "443")
	}

	conn, err := t.dialer.DialContext(req.Context(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	uconn := utls.UClient(conn, &utls.Config{ServerName: req.URL.Hostname()}, utls.HelloChrome_120)
	if err := uconn.HandshakeContext(req.Context()); err != nil {
		conn.Close()
		return nil, err
	}

	if uconn.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		h2conn, err := t.h2Transport.NewClientConn(uconn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		resp, err := h2conn.RoundTrip(req)
		if err != nil {
			conn.Close()
			return nil, err
		}
		resp.Body = &connCloser{ReadCloser: resp.Body, conn: uconn}
		return resp, nil
	}

	return t.roundTripHTTP1(uconn, req)
}

func (t *fingerprintTransport) roundTripHTTP1(conn net.Conn, req *http.Request) (*http.Response, error) {
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}

	resp.Body = &connCloser{ReadCloser: resp.Body, conn: conn}
	return resp, nil
}

// connCloser closes the underlying connection with the body, since
// fingerprinted connections are never pooled.
type connCloser struct {
	io.ReadCloser
	conn net.Conn
}

func (c *connCloser) Close() error {
	err := c.ReadCloser.Close()
	c.conn.Close()
	return err
}
