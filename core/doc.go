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

// Package core compiles command shapes into one shared character
// automaton and runs text through it.
//
// A shape is a small declaration of what a command looks like:
//
//	crate {query}
//	ban {user} {hours}
//	play mode={} edition={} ```
//	```
//	tags create {key} value...
//
// AddShape() compiles a shape into the Automaton, reusing states for
// shared prefixes, so a hundred commands still walk as one machine.
// Process() then runs an input string through the automaton one
// character at a time.  When a character satisfies more than one
// outgoing transition, the traversal forks and the paths race; losers
// die quietly.  A successful Process() reports which handler won
// along with the substrings the shape captured ({query}, flag values,
// fenced code, trailing text).
//
// The package knows nothing about chat networks, prefixes ("?",
// "!crate"), or who is allowed to run what.  Callers hand Process()
// the already-stripped command text and get back a HandlerRef that
// they registered earlier.  The dispatch package layers commands,
// guards, and help on top.
//
// Build first, then match: register every shape before the first
// Process() call, from a single goroutine.  After that the automaton
// is never written again, and any number of goroutines may call
// Process() concurrently.
package core
