package wordlist

import "errors"

var (
	// ErrEmpty is returned when a source yields no words.
	ErrEmpty = errors.New("wordlist: no words")

	// ErrNoSource is returned for an empty source string.
	ErrNoSource = errors.New("wordlist: no source given")

	// ErrUnknownBuiltin is returned for an unrecognised builtin:<name>.
	ErrUnknownBuiltin = errors.New("wordlist: unknown built-in list")

	// ErrDownload is returned when a remote list answers with a non-200 status.
	ErrDownload = errors.New("wordlist: download failed")
)
