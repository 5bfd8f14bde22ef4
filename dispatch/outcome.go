/* Copyright 2019-2020 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dispatch

// Outcome represents the possible results of an Execute call.
type Outcome int

//go:generate stringer -type=Outcome
//go:generate jsonenums -type=Outcome

const (
	NoMatch      Outcome = iota // No registered shape matched the input.
	Unauthorized                // A guard said no.
	Invoked                     // The handler ran and returned nil.
	Failed                      // The guard or the handler returned an error (or panicked).
)

// Dispatched reports what Execute did with one line of input.
type Dispatched struct {
	Outcome Outcome `json:"outcome"`

	// Command is the winning command, if any.
	Command *Command `json:"-"`

	// Params are the substrings the automaton captured, keyed by
	// capture name.
	Params map[string]string `json:"params,omitempty"`

	// Err is what the guard or handler returned (or the recovered
	// panic) when Outcome is Failed.
	Err error `json:"-"`
}
