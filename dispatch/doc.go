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

// Package dispatch maintains a registry of commands and routes input
// lines to their handlers.
//
// A Registry compiles every registered shape into one shared
// core.Automaton.  Execute gives an input line to that automaton and,
// when a command matches, runs the command's guard (if any) and then
// its handler with the captured parameters.
//
// Registration is not safe for concurrent use.  Register everything
// first; after that any number of goroutines can call Execute (and
// the read-only accessors) concurrently.
package dispatch
