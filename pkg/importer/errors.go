package importer

import (
	"errors"
	"strings"
)

var (
	ErrNotCSV          = errors.New("only .csv files accepted")
	ErrInvalidEncoding = errors.New("file is neither UTF-8 nor Latin-1")
	ErrMissingHeaders  = errors.New("CSV has no headers")
	ErrEmptyFile       = errors.New("CSV has no data rows")
	ErrMalformedCSV    = errors.New("malformed CSV")
	ErrNoTokenColumns  = errors.New("cannot find token columns")
)

// CheckFilename rejects uploads whose name does not end in ".csv".
func CheckFilename(name string) error {
	if name == "" || !strings.HasSuffix(name, ".csv") {
		return ErrNotCSV
	}
	return nil
}
