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

// Package chatio connects a command registry to chat surfaces.
//
// A Couplings implementation moves messages between some surface
// (stdin/stdout, a websocket, an MQTT broker) and a pair of channels;
// a Session sits between those channels and a dispatch.Registry.
package chatio

import (
	"context"
)

// Inbound is one message arriving from a chat surface.
type Inbound struct {
	// From names the speaker.  A Session uses it to ignore the
	// bot's own messages; otherwise it's just along for the ride.
	From string `json:"from,omitempty"`

	Text string `json:"text"`
}

// Outbound is one line the bot says.
type Outbound struct {
	Text string `json:"text"`
}

// Couplings provide channels for chat input and output.
//
// For example, an implementation could couple a session to an MQTT
// broker, or to stdin and stdout for tinkering.
type Couplings interface {
	// Start initializes the Couplings.
	Start(context.Context) error

	// IO returns the input and output channels plus a channel
	// that's closed when input is exhausted.
	IO(context.Context) (chan Inbound, chan Outbound, chan bool, error)

	// Stop shuts down the Couplings.
	Stop(context.Context) error
}
