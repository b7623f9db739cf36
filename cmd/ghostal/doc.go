// Command ghostal scrapes Space Ghost Coast to Coast transcripts from the fan
// guide, annotates every line of dialogue and loads the result into a
// relational database.
//
// Stages can be run on their own (scrape, preprocess, load) or together (run).
// Each stage reads the previous stage's JSON files from disk and never
// overwrites a file it already produced.
package main
