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

// Package interpreters gathers the interpreters this repo offers.
package interpreters

import (
	"github.com/Comcast/patter/dispatch"
	"github.com/Comcast/patter/interpreters/goja"
	"github.com/Comcast/patter/interpreters/noop"
)

// Standard returns the interpreters a command table can name: "goja"
// (with "ecmascript" aliases) and "noop".
func Standard() map[string]dispatch.Interpreter {
	is := make(map[string]dispatch.Interpreter)

	js := goja.NewInterpreter()
	is["goja"] = js
	is["ecmascript"] = js
	is["ecmascript-5.1"] = js

	is["noop"] = noop.NewInterpreter()

	return is
}
