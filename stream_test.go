// Copyright (c) 2024 The cbordiag Authors. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package cbordiag

import (
	"bytes"
	"errors"
	"testing"
)

func TestSequenceDecoder(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(hexBytes(t, "17"))           // 23
	buf.Write(hexBytes(t, "4568656c6c6f")) // "hello" bytes
	buf.Write(hexBytes(t, "f4"))           // false

	dec := NewSequenceDecoder(&buf)

	item, err := dec.Next()
	if err != nil {
		t.Fatalf("Next() #1 error: %v", err)
	}
	if !Equal(item, Integer{Value: 23, Width: WidthZero}) {
		t.Errorf("Next() #1 = %#v, want Integer{23,Zero}", item)
	}

	item, err = dec.Next()
	if err != nil {
		t.Fatalf("Next() #2 error: %v", err)
	}
	if !Equal(item, ByteString{Data: []byte("hello"), Width: WidthZero}) {
		t.Errorf("Next() #2 = %#v, want ByteString{hello,Zero}", item)
	}

	item, err = dec.Next()
	if err != nil {
		t.Fatalf("Next() #3 error: %v", err)
	}
	if !Equal(item, Simple(SimpleFalse)) {
		t.Errorf("Next() #3 = %#v, want Simple(false)", item)
	}

	_, err = dec.Next()
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Next() #4 err = %v, want ErrEmptySequence", err)
	}
}

func TestSequenceDecoderTruncatedFinalItem(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(hexBytes(t, "17"))
	buf.Write(hexBytes(t, "1818")[:1]) // truncated second item

	dec := NewSequenceDecoder(&buf)
	if _, err := dec.Next(); err != nil {
		t.Fatalf("Next() #1 error: %v", err)
	}
	_, err := dec.Next()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Next() #2 on truncated final item err = %v, want ErrMalformed", err)
	}
}

func TestSequenceDecoderEmptyInput(t *testing.T) {
	dec := NewSequenceDecoder(bytes.NewReader(nil))
	_, err := dec.Next()
	if !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Next() on empty input err = %v, want ErrEmptySequence", err)
	}
}
