// Package indexing turns domain records into postings and keeps the index in
// step with the records as they change.
//
// An Indexer analyzes the keyword and fulltext fields of a core.Indexable into
// tokens and upserts the resulting posting, so reindexing a record always
// replaces its previous posting. Hooks adapt an Indexer to save and destroy
// callbacks, and ReindexAll rebuilds the postings of many records using a
// worker pool for analysis.
package indexing
