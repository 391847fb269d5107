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

package cnf

// Options defines global configuration options for the server and the
// REPL client. There is no config file format; every field is set from
// a command-line flag.
type Options struct {

	Conn struct {
		Bind string // host:port to bind the TCP listener to, or to dial as a client
	}

	Buffer struct {
		Size int // maximum size, in bytes, of a single read from a connection
	}

	Logging struct {
		Level  string // trace, debug, info, warn, error, fatal, panic
		Output string // none, stdout, stderr
		Format string // text, json
	}
}

// Settings holds the options parsed for the running process.
var Settings *Options
