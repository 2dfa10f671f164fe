// Copyright 2025 Poiesic Systems
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


package langchain

import "unicode"

// repairJSON restores the opening quote small models sometimes drop from an
// object key, as in `{"reply": "ok", consensus_point": null}`.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)
	for i := 0; i < len(in); i++ {
		out = append(out, in[i])
		if in[i] != '{' && in[i] != ',' {
			continue
		}

		start := i + 1
		for start < len(in) && unicode.IsSpace(in[start]) {
			start++
		}
		end := start
		for end < len(in) && (isLetter(in[end]) || in[end] == '_') {
			end++
		}
		if end == start || end+1 >= len(in) || in[end] != '"' || in[end+1] != ':' {
			continue
		}

		out = append(out, in[i+1:start]...)
		out = append(out, '"')
		out = append(out, in[start:end]...)
		i = end - 1
	}
	return string(out)
}
