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

// Package cli is the process entry point: a cobra root command with a
// `serve` subcommand running the TCP server and a `client` subcommand
// running the interactive REPL described in spec.md §6.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eventdb/eventdb/cnf"
	"github.com/eventdb/eventdb/log"
)

var opts = &cnf.Options{}

var rootCmd = &cobra.Command{
	Use:   "eventdb",
	Short: "An event-sourcing command database",
}

func init() {

	rootCmd.AddCommand(serveCmd, clientCmd)

	rootCmd.PersistentFlags().StringVarP(&opts.Conn.Bind, "bind", "b", "127.0.0.1:8080", "The host:port to bind (serve) or dial (client)")
	rootCmd.PersistentFlags().IntVar(&opts.Buffer.Size, "buffer-size", 4096, "Maximum size, in bytes, of a single read from a connection")

	rootCmd.PersistentFlags().StringVar(&opts.Logging.Level, "log-level", "info", "The logging level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&opts.Logging.Format, "log-format", "text", "The logging format: text, json")
	rootCmd.PersistentFlags().StringVar(&opts.Logging.Output, "log-output", "stdout", "The logging output: none, stdout, stderr")

	cobra.OnInitialize(setup)

}

// Execute runs the root command, exiting the process with a non-zero
// status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
