// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sync is the mirror's sync engine (C3): full, smart-incremental, and
single-entity replication of one upstream instance into the relational
mirror store, including junction maintenance, soft-delete reconciliation
(with perceptual-hash merge detection for scenes), and the post-sync
derivation sequence.

Concurrency: exactly one sync runs at a time, process-wide, behind the
Engine's isSyncing gate; aborting sets a cancellation signal checked at
every page and pass boundary.
*/
package sync

import (
	"errors"
	"regexp"
)

// ErrAborted is the sentinel returned when a sync run observes a
// cancellation signal mid-run. It is distinct from a genuine failure so
// callers can log it at info level rather than surface it as an error.
var ErrAborted = errors.New("sync: aborted")

// ErrAlreadySyncing is returned by a trigger call when a sync is already
// in progress process-wide.
var ErrAlreadySyncing = errors.New("sync: a sync is already running")

// idPattern is the SQL-safety id validator every upstream id (and every
// related-entity id reconstructed into a junction row) must satisfy before
// use.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validID(id string) bool {
	return id != "" && idPattern.MatchString(id)
}
