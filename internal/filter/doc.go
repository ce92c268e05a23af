// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

/*
Package filter implements the document property filter language used to
restrict kNN retrieval.

Syntax:

	{"lang": {"$eq": "en"}}
	{"tags": {"$in": ["sports", "news"]}}
	{"publication_date": {"$gte": "2026-01-01T00:00:00Z"}}
	{"$and": [{"lang": {"$eq": "en"}}, {"paywall": {"$eq": false}}]}
	{"$ids": ["doc-1", "doc-2"]}

Limits:
  - $in and $ids take at most 500 values
  - $and and $or take at most 10 filters
  - combinations nest at most 2 levels deep

Filters are evaluated in memory with Filter.Matches, or translated to a
DuckDB WHERE expression with SQL. WithPublishedAfter adds the
publication_date lower bound used by retrieval requests.
*/
package filter
