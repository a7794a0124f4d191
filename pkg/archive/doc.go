// Package archive defines the SEDA data model and the on-disk
// document format: entries, variants, the document assembler and its
// decode-side parser.
//
// A SEDA artifact is a POSIX shell polyglot. The documentation and
// payload blocks are carried in quoted heredocs, which makes them
// inert to the shell, and the last executable line hands the file to
// `seda extract` for reconstruction. The WebPolyglot variant adds
// fence lines so the body also reads as an HTML/Markdown comment.
package archive
