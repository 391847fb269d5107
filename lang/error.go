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

package lang

import "fmt"

// LexError represents a positioned error raised while scanning.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: %s at line %d, column %d", e.Message, e.Line, e.Column)
}

// ParseError represents an error raised while building the AST.
type ParseError struct {
	Message string
	Found   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s (found %s)", e.Message, e.Found)
}
