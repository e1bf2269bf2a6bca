// Package model defines the document intermediate representation produced by
// the format readers: an immutable Document made of ordered Blocks
// (paragraphs, tables, embedded-object references), a character style table,
// and extracted binary Resources.
//
// A Document is built in a single pass by a reader and handed to the caller
// whole; nothing in this package mutates a Document after it is returned.
package model
