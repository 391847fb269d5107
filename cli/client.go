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

package cli

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "An interactive REPL client for the event database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient(opts.Conn.Bind, os.Stdin, os.Stdout)
	},
}

var (
	errorColor   = ansi.ColorFunc("red")
	successColor = ansi.ColorFunc("green")
)

// errorKinds are the prefixes used by the pipeline's error types when
// rendered to text; a response starting with one of these is an
// error, everything else is a success summary.
var errorKinds = []string{
	"lex error:", "parse error:", "plan error:",
	"MissingStream:", "MissingEvent:", "MissingAttribute:",
	"Conflict::Attribute:", "Unsupported:", "StatePoisoned:", "ClockError:",
}

func isErrorResponse(s string) bool {
	for _, kind := range errorKinds {
		if strings.HasPrefix(s, kind) {
			return true
		}
	}
	return false
}

// runClient dials addr, then reads `;`-terminated commands from in
// (one per scanned line, joined until a `;` is seen), forwarding each
// to the server and printing the colorized response.
func runClient(addr string, in io.Reader, out io.Writer) error {

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintf(out, "connected to %s\n", addr)

	scanner := bufio.NewScanner(in)
	reader := bufio.NewReader(conn)

	var pending strings.Builder

	for scanner.Scan() {

		pending.WriteString(scanner.Text())
		pending.WriteByte('\n')

		if !strings.Contains(pending.String(), ";") {
			continue
		}

		if _, err := conn.Write([]byte(pending.String())); err != nil {
			return err
		}
		pending.Reset()

		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\n")

		if isErrorResponse(line) {
			fmt.Fprintln(out, errorColor(line))
		} else {
			fmt.Fprintln(out, successColor(line))
		}

	}

	return scanner.Err()

}
