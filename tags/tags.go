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

// Package tags is a little key-to-text store with a command set for
// it: chat users can save a blob of text under a key and recall it
// later.
package tags

import (
	"errors"
	"log"
	"time"

	"github.com/Comcast/patter/dispatch"

	bolt "go.etcd.io/bbolt"
)

// NotFound occurs when you ask for (or delete) a tag that isn't
// there.
var NotFound = errors.New("tag not found")

var bucketName = []byte("tags")

// Store persists tags in a bolt file.
type Store struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// Open opens (creating if necessary) the tag store at the given
// filename.
func Open(filename string) (*Store, error) {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(filename, 0644, opts)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		filename: filename,
		db:       db,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("tags.Store "+format, args...)
	}
}

// Put stores text under a key, replacing any text already there.
func (s *Store) Put(key, text string) error {
	s.logf("Put %q", key)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(text))
	})
}

// Get returns the text stored under a key (NotFound if none).
func (s *Store) Get(key string) (string, error) {
	s.logf("Get %q", key)
	var text string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return NotFound
		}
		text = string(v)
		return nil
	})
	return text, err
}

// Delete removes a tag (NotFound if it wasn't there).
func (s *Store) Delete(key string) error {
	s.logf("Delete %q", key)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		k := []byte(key)
		if b.Get(k) == nil {
			return NotFound
		}
		return b.Delete(k)
	})
}

// All returns every tag key.  Bolt keeps keys in byte order, so the
// listing comes back sorted for free.
func (s *Store) All() ([]string, error) {
	keys := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// maxListing caps the "tags" reply so it stays under common chat
// message limits.
const maxListing = 1980

// Register adds the tag command set to a registry:
//
//	tags create {key} value...   create a tag (guarded)
//	tags delete {key}            delete a tag (guarded)
//	tags                         list all tags
//	tag {key}                    recall one tag
//
// plus a "tags" menu entry.  Bare "tags" always lists: the recall
// shape only reaches its capture through a separator space, so it
// cannot claim "tags" with key "s".
func Register(r *dispatch.Registry, s *Store, g dispatch.GuardFunc) error {
	create := func(args dispatch.Args) error {
		if err := s.Put(args.Param("key"), args.Param("value")); err != nil {
			return err
		}
		return args.Respond("✅")
	}
	if err := r.AddProtected("tags create {key} value...", create, g); err != nil {
		return err
	}

	remove := func(args dispatch.Args) error {
		key := args.Param("key")
		switch err := s.Delete(key); err {
		case nil:
			return args.Respond("✅")
		case NotFound:
			return args.Respond("Tag not found for `" + key + "`")
		default:
			return err
		}
	}
	if err := r.AddProtected("tags delete {key}", remove, g); err != nil {
		return err
	}

	all := func(args dispatch.Args) error {
		keys, err := s.All()
		if err != nil {
			return err
		}
		if 0 == len(keys) {
			return args.Respond("No tags found")
		}
		listing := ""
		for _, key := range keys {
			if maxListing < len(listing) {
				break
			}
			listing += key + "\n"
		}
		return args.Respond("All tags: ```\n" + listing + "```")
	}
	if err := r.Add("tags", all); err != nil {
		return err
	}

	get := func(args dispatch.Args) error {
		key := args.Param("key")
		switch text, err := s.Get(key); err {
		case nil:
			return args.Respond(text)
		case NotFound:
			return args.Respond("Tag not found for `" + key + "`")
		default:
			return err
		}
	}
	if err := r.Add("tag {key}", get); err != nil {
		return err
	}

	return r.Help("tags", "Save and recall snippets of text.", func(args dispatch.Args) error {
		return args.Respond("```" + `
tags create {key} value...   Create a tag.
tags delete {key}            Delete a tag.
tags                         Get all the tags.
tag {key}                    Get a specific tag.
` + "```")
	})
}
