package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "null parameter", err: ErrNullParameter, want: -1},
		{name: "parse", err: ErrParse, want: -2},
		{name: "invalid utf8", err: ErrInvalidUTF8, want: -3},
		{name: "path error", err: &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, want: -4},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, want: -4},
		{name: "malformed source", err: ErrMalformedSource, want: -5},
		{name: "resource not found", err: ErrResourceNotFound, want: -6},
		{name: "unknown", err: errors.New("something else"), want: -7},
		{name: "missing feature", err: ErrMissingFeature, want: -8},
		{name: "crypto", err: ErrCrypto, want: -9},
		{name: "id too long", err: ErrLeafIDTooLong, want: -10},
		{name: "wrapped", err: fmt.Errorf("context: %w", ErrCrypto), want: -9},
		{name: "deeply wrapped", err: fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrMalformedSource)), want: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}
