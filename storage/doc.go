// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for haystack.
//
// This package defines the contracts between the search core and the index
// store: token lookup, corpus statistics, query execution and posting writes.
// It also defines the store-neutral query description (QuerySpec, Filter,
// Order) and the lazy Cursor returned by query execution.
//
// # Architecture
//
//   - TokenRepository: resolves normalized values to known tokens
//   - StatsProvider: corpus statistics used to compute token rarity
//   - IndexRepository: executes queries and maintains postings
//   - DocumentRepository: a small domain store for core.Document records
//
// # Usage
//
// Open an in-memory index for tests:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
//	cursor, err := repos.Index.Execute(ctx, storage.QuerySpec{
//	    Filter: storage.Filter{Operator: storage.OpAll, TokenIDs: ids},
//	    Order:  storage.Order{{Field: storage.SortScore, Descending: true}},
//	})
//
// # Error Handling
//
// Backing store errors are returned as-is. Two conditions are reported with
// sentinels so callers can recover from them: ErrNotFound for a single missing
// record and ErrNotAllFound for a partially satisfied batch lookup.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository and cursor methods accept context.Context for cancellation.
// Cancellation surfaces as the context's error and is never retried.
package storage
