package brine

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Scratch buffers are shared across encoders and decoders so steady-state
// streaming does not allocate per value.
var (
	scratchPool = sync.Pool{
		New: func() any {
			b := make([]byte, 0, 512)
			return &b
		},
	}
	readPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

// An Encoder writes encoded values to an underlying writer. Each value is
// written in a single Write call.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode maps v through the reflection rules of Marshal and writes the
// wire bytes.
func (e *Encoder) Encode(v any) error {
	val, err := MarshalValue(v)
	if err != nil {
		return err
	}
	return e.EncodeValue(val)
}

// EncodeValue writes the wire form of a value.
func (e *Encoder) EncodeValue(v Value) error {
	bp := scratchPool.Get().(*[]byte)
	buf := AppendValue((*bp)[:0], v)
	_, err := e.w.Write(buf)
	*bp = buf[:0]
	scratchPool.Put(bp)
	if err != nil {
		return fmt.Errorf("brine: write: %w", err)
	}
	return nil
}

// A Decoder reads one encoded value from an underlying reader. The wire
// format is self-delimiting but carries no stream framing, so the reader
// is drained to its end and the value must account for every byte read.
type Decoder struct {
	r io.Reader

	// Options configures the decode. BorrowStrings is ignored; decoded
	// values must outlive the Decoder's internal read buffer.
	Options DecodeOptions
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// DecodeValue drains the reader and decodes its contents as one value.
func (d *Decoder) DecodeValue() (Value, error) {
	buf := readPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		readPool.Put(buf)
	}()
	buf.Reset()
	if _, err := buf.ReadFrom(d.r); err != nil {
		return nil, fmt.Errorf("brine: read: %w", err)
	}
	opts := d.Options
	opts.BorrowStrings = false
	return opts.FromBytes(buf.Bytes())
}

// Decode drains the reader, decodes one value, and projects it into v,
// which must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	val, err := d.DecodeValue()
	if err != nil {
		return err
	}
	return UnmarshalValue(val, v)
}
