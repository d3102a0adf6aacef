// Package cmdline turns the text typed on the status line into commands.
//
// # Syntax
//
// A command line starts with ':' followed by an instruction and its
// arguments, separated by whitespace:
//
//	:filter h red ERROR
//	:stream_out ~/capture.log
//	:connect 3
//
// A line starting with '/' is shorthand for :find:
//
//	/timeout   →   :find timeout
//
// # Aliases
//
// The first token is looked up in the alias list loaded from prefs. A match
// is replaced by the alias expansion and the remaining tokens are appended:
//
//	[[alias]]
//	alias = ":err"
//	expanded = ":filter h red"
//
//	:err TIMEOUT   →   :filter h red TIMEOUT
//
// Aliases are applied in the order they are listed, so one alias may expand
// into another that appears later in the list.
//
// # Instructions
//
//	:filter {h|i|e} [color] text   add a highlight, inclusion or exclusion filter
//	:clear_filters                  remove every filter
//	:clear                          clear the log history
//	:find text                      search the displayed lines
//	:stream_in path                 stream a file as a new source
//	:stdin                          stream standard input as a new source
//	:stream_out path                record lines to a file
//	:stream_out_stop                stop recording
//	:connect id / :disconnect id    start or stop a source
//	:remove id                      disconnect and forget a source
//	:refresh                        rescan debug probes
//	:reset id / :reflash id         reset or reprogram a probe-backed target
//
// # Errors
//
// Parse never panics. Malformed input yields an error whose text is meant to
// be shown on the status line as-is.
package cmdline
