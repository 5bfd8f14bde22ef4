// Package patter provides shape-driven chat-command routing machinery.
//
// The core code is in package 'core', and some command-line tools are in `cmd`.
//
// See https://github.com/Comcast/patter/blob/master/README.md for more.
package patter
