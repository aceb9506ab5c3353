// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package access decides whether a card UID may pass. Decisions are shown on
// an optional display and recorded in an optional audit sink.
package access

import (
	"sort"
	"sync"

	"github.com/ZaparooProject/go-mfrc522"
)

// Messages shown for a decision.
const (
	LabelGranted = "Access Granted"
	LabelDenied  = "Access Denied"
)

// Whitelist maps card UIDs to holder names. It is safe for concurrent use.
type Whitelist struct {
	names map[mfrc522.UID]string
	mu    sync.RWMutex
}

// Entry is one whitelist card.
type Entry struct {
	Name string
	UID  mfrc522.UID
}

// NewWhitelist creates a whitelist holding entries.
func NewWhitelist(entries ...Entry) *Whitelist {
	w := &Whitelist{names: make(map[mfrc522.UID]string, len(entries))}
	for _, e := range entries {
		w.names[e.UID] = e.Name
	}
	return w
}

// DefaultWhitelist returns the two factory cards, DEADBEEF and 12345678.
func DefaultWhitelist() *Whitelist {
	return NewWhitelist(
		Entry{UID: mfrc522.UID{0xDE, 0xAD, 0xBE, 0xEF}, Name: "card-1"},
		Entry{UID: mfrc522.UID{0x12, 0x34, 0x56, 0x78}, Name: "card-2"},
	)
}

// Add adds or renames a card.
func (w *Whitelist) Add(uid mfrc522.UID, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.names[uid] = name
}

// Remove deletes a card and reports whether it was present.
func (w *Whitelist) Remove(uid mfrc522.UID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.names[uid]
	delete(w.names, uid)
	return ok
}

// Lookup returns the holder name of uid.
func (w *Whitelist) Lookup(uid mfrc522.UID) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	name, ok := w.names[uid]
	return name, ok
}

// Len returns the number of cards.
func (w *Whitelist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.names)
}

// Entries returns the cards ordered by UID.
func (w *Whitelist) Entries() []Entry {
	w.mu.RLock()
	entries := make([]Entry, 0, len(w.names))
	for uid, name := range w.names {
		entries = append(entries, Entry{UID: uid, Name: name})
	}
	w.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UID.String() < entries[j].UID.String()
	})
	return entries
}
