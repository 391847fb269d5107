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
	"github.com/eventdb/eventdb/cnf"
	"github.com/eventdb/eventdb/log"
)

// setup validates the parsed flags and wires up logging, run once by
// cobra.OnInitialize before the chosen subcommand's RunE.
func setup() {

	valid := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true,
		"error": true, "fatal": true, "panic": true,
	}
	if opts.Logging.Level != "" {
		if !valid[opts.Logging.Level] {
			log.Fatal("incorrect log level specified")
		}
	}

	switch opts.Logging.Format {
	case "", "text", "json":
	default:
		log.Fatal("incorrect log format specified")
	}

	switch opts.Logging.Output {
	case "", "none", "stdout", "stderr":
	default:
		log.Fatal("incorrect log output specified")
	}

	if opts.Logging.Level != "" {
		log.SetLevel(opts.Logging.Level)
	}
	if opts.Logging.Format != "" {
		log.SetFormat(opts.Logging.Format)
	}
	if opts.Logging.Output != "" {
		log.SetOutput(opts.Logging.Output)
	}

	cnf.Settings = opts

}
