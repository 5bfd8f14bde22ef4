/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/url"

	"github.com/Comcast/patter/chatio"

	"github.com/gorilla/websocket"
)

// WebSocketCouplings talks to a chat gateway over a WebSocket.
//
// Inbound frames should be JSON {"from":..., "text":...}; a frame
// that isn't JSON is taken as bare message text.  Outbound replies go
// out as JSON {"text":...}.
type WebSocketCouplings struct {
	URL string

	in   chan chatio.Inbound
	out  chan chatio.Outbound
	done chan bool
	conn *websocket.Conn
}

func NewWebSocketCouplings(args []string) (*WebSocketCouplings, *flag.FlagSet) {
	c := &WebSocketCouplings{}
	fs := flag.NewFlagSet("ws", flag.ExitOnError)
	fs.StringVar(&c.URL, "url", "ws://localhost:8080/chat", "Target URL for the WebSocket chat gateway")
	if args == nil {
		return nil, fs
	}
	fs.Parse(args)
	return c, fs
}

// Start creates the WebSocket session and starts processing it.
func (c *WebSocketCouplings) Start(ctx context.Context) error {

	u, err := url.Parse(c.URL)
	if err != nil {
		return err
	}

	c.in = make(chan chatio.Inbound)
	c.out = make(chan chatio.Outbound)
	c.done = make(chan bool)

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go func() {
		// This goroutine owns done: a read error means the peer
		// (or Stop) closed the connection, and the session
		// should wind down.
		defer close(c.done)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, bs, err := conn.ReadMessage()
			if err != nil {
				E(err, "ReadMessage")
				return
			}
			if len(bs) == 0 {
				continue
			}

			var msg chatio.Inbound
			if err = json.Unmarshal(bs, &msg); err != nil {
				msg = chatio.Inbound{Text: string(bs)}
			}

			select {
			case <-ctx.Done():
				return
			case c.in <- msg:
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case o := <-c.out:
				js, err := json.Marshal(&o)
				if err != nil {
					E(err, "Marshal")
					continue
				}
				if err = conn.WriteMessage(websocket.TextMessage, js); err != nil {
					E(err, "WriteMessage")
					return
				}
			}
		}
	}()

	return nil
}

// IO just returns the channels that Start() initialized.
func (c *WebSocketCouplings) IO(ctx context.Context) (chan chatio.Inbound, chan chatio.Outbound, chan bool, error) {
	return c.in, c.out, c.done, nil
}

// Stop terminates the WebSocket connection.  The read loop notices
// and closes done.
func (c *WebSocketCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	// Close errors here usually just mean the peer hung up first.
	c.conn.Close()
	return nil
}
