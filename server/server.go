// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server runs the TCP acceptor loop and the per-connection
// command loop described in spec.md §6: one goroutine per accepted
// connection, reading `;`-terminated commands and replying with a
// textual summary or "<kind>: <message>" error. The connection stays
// open across multiple commands.
package server

import (
	"io"
	"net"
	"strings"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/eventdb/eventdb/engine"
	"github.com/eventdb/eventdb/lang"
	"github.com/eventdb/eventdb/log"
	"github.com/eventdb/eventdb/plan"
)

// defaultBufferSize bounds a single read from a connection when the
// caller doesn't specify one. Scaled up from the 1024-byte buffer of
// the reference implementation to comfortably hold a multi-attribute
// `add` without stitching reads together, while staying within
// spec.md's 1-64 KiB guidance.
const defaultBufferSize = 4096

// Server accepts TCP connections on Bind and serves each one against
// a shared Engine.
type Server struct {
	Bind       string
	BufferSize int
	Engine     *engine.Engine
}

// New builds a Server bound to addr, backed by a fresh Engine. A
// bufferSize of 0 or less falls back to defaultBufferSize.
func New(addr string, bufferSize int) *Server {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Server{Bind: addr, BufferSize: bufferSize, Engine: engine.New()}
}

// ListenAndServe blocks accepting connections until the listener
// fails, e.g. because the socket was closed from elsewhere.
func (s *Server) ListenAndServe() error {

	ln, err := net.Listen("tcp", s.Bind)
	if err != nil {
		return err
	}
	defer ln.Close()

	log.WithField("bind", s.Bind).Info("server listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.WithField("error", err).Error("failed to accept connection")
			return err
		}
		go s.handle(conn)
	}

}

func (s *Server) handle(conn net.Conn) {

	id := xid.New().String()
	entry := log.WithField("conn", id).WithField("remote", conn.RemoteAddr().String())
	entry.Info("connection accepted")

	defer func() {
		conn.Close()
		entry.Info("connection closed")
	}()

	var pending strings.Builder
	buf := make([]byte, s.BufferSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			pending.Write(buf[:n])
			s.drainCommands(conn, entry, &pending)
		}
		if err != nil {
			if err != io.EOF {
				entry.WithField("error", err).Warn("connection read failed")
			}
			return
		}
	}

}

// drainCommands executes every complete `;`-terminated command
// currently buffered in pending, replying to each in turn, and leaves
// any trailing partial command in pending for the next read.
func (s *Server) drainCommands(conn net.Conn, entry *logrus.Entry, pending *strings.Builder) {

	for {
		buffered := pending.String()

		idx := strings.IndexByte(buffered, ';')
		if idx < 0 {
			return
		}

		command := buffered[:idx+1]
		rest := buffered[idx+1:]

		pending.Reset()
		pending.WriteString(rest)

		reply := s.Exec(command)

		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			entry.WithField("error", err).Warn("failed to write response")
			return
		}
	}

}

// Exec runs a single `;`-terminated command through the full pipeline
// and renders either a success summary or a "<kind>: <message>" error
// string. drainCommands calls it once per command read from a
// connection; it needs no socket of its own.
func (s *Server) Exec(command string) string {

	p := lang.NewParser(lang.NewLexer(strings.NewReader(command)))

	tx, err := p.Parse()
	if err != nil {
		return err.Error()
	}

	execPlan, err := plan.Plan(tx, s.Engine.Catalog())
	if err != nil {
		return err.Error()
	}

	summary, err := s.Engine.Exec(execPlan)
	if err != nil {
		return err.Error()
	}

	return summary

}
