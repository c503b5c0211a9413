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


// Package search builds and runs full-text queries against the token index.
//
// A Ranker tokenizes free text, resolves the values against the index and
// orders the resolved tokens rarest first. A Searcher turns the ranking into
// a storage.QuerySpec:
//   - the filter matches postings containing all or any of the tokens,
//     optionally restricted by facets and model types
//   - the order is score, then the keyword score of each ranked token, then
//     the fulltext score of each ranked token, all descending
//   - the projection is the identity of each posting
//
// Text that resolves to no known token produces a query that matches nothing.
package search
