/*
 * Copyright 2026 The CoEdit Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cmap provides a sharded concurrent map.
package cmap

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// numShards is the number of shards. Sharding reduces lock contention when
// many connections mutate the map concurrently.
const numShards = 16

type shard[K comparable, V any] struct {
	sync.RWMutex
	items map[K]V
}

// Map is a concurrent map that is safe for use by multiple goroutines.
type Map[K comparable, V any] struct {
	shards [numShards]shard[K, V]
}

// New creates a new Map.
func New[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	var idx uint32
	switch k := any(key).(type) {
	case string:
		h := fnv.New32a()
		_, _ = h.Write([]byte(k))
		idx = h.Sum32()
	case int:
		idx = uint32(k)
	default:
		h := fnv.New32a()
		_, _ = h.Write([]byte(fmt.Sprintf("%v", key)))
		idx = h.Sum32()
	}
	return &m.shards[idx%numShards]
}

// Set sets a key-value pair.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)

	s.Lock()
	defer s.Unlock()

	s.items[key] = value
}

// Get retrieves the value for the given key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)

	s.RLock()
	defer s.RUnlock()

	value, exists := s.items[key]
	return value, exists
}

// Has checks if the given key exists in the map.
func (m *Map[K, V]) Has(key K) bool {
	s := m.shardFor(key)

	s.RLock()
	defer s.RUnlock()

	_, exists := s.items[key]
	return exists
}

// Delete removes the given key and returns the value it held, if any.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	s := m.shardFor(key)

	s.Lock()
	defer s.Unlock()

	value, exists := s.items[key]
	if exists {
		delete(s.items, key)
	}
	return value, exists
}

// UpsertFunc is a function to insert or update a key-value pair.
type UpsertFunc[K comparable, V any] func(value V, exists bool) V

// Upsert inserts or updates a key-value pair atomically.
func (m *Map[K, V]) Upsert(key K, upsertFunc UpsertFunc[K, V]) V {
	s := m.shardFor(key)

	s.Lock()
	defer s.Unlock()

	v, exists := s.items[key]
	res := upsertFunc(v, exists)
	s.items[key] = res
	return res
}

// Len returns the number of items in the map.
func (m *Map[K, V]) Len() int {
	count := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.RLock()
		count += len(s.items)
		s.RUnlock()
	}
	return count
}

// Keys returns a slice of all keys in the map.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0)
	for i := range m.shards {
		s := &m.shards[i]
		s.RLock()
		for k := range s.items {
			keys = append(keys, k)
		}
		s.RUnlock()
	}
	return keys
}

// Values returns a slice of all values in the map.
func (m *Map[K, V]) Values() []V {
	values := make([]V, 0)
	for i := range m.shards {
		s := &m.shards[i]
		s.RLock()
		for _, v := range s.items {
			values = append(values, v)
		}
		s.RUnlock()
	}
	return values
}
