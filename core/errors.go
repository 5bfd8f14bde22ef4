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

package core

import "fmt"

// BadShape reports a shape the compiler refuses: empty text, an
// unnamed capture, non-ASCII literal characters, a broken code
// fence.  Shapes are written by developers, not end users, so a
// BadShape at registration is a bug in the caller; nothing at match
// time ever returns one.
type BadShape struct {
	Shape  string
	Reason string
}

func (e *BadShape) Error() string {
	if e.Shape == "" {
		return "bad shape: " + e.Reason
	}
	return fmt.Sprintf("bad shape %q: %s", e.Shape, e.Reason)
}

// ShapeConflict reports a registration whose grammar is identical to
// an earlier one: both would accept on the same state, so one of them
// could never win.
type ShapeConflict struct {
	Shape    string
	State    int
	Existing HandlerRef
	Proposed HandlerRef
}

func (e *ShapeConflict) Error() string {
	return fmt.Sprintf("shape %q conflicts with an earlier registration (state %d, handler %d vs %d)",
		e.Shape, e.State, e.Existing, e.Proposed)
}
