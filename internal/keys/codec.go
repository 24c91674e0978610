package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by NewCodec for names it cannot resolve.
var ErrUnknownEncoding = errors.New("unknown encoding")

// DecodeStatus is the outcome of decoding a pending byte run.
type DecodeStatus int

const (
	DecodeOK DecodeStatus = iota
	DecodeIncomplete
	DecodeInvalid
)

// Codec decodes the raw bytes that did not match the keymap into text.
type Codec interface {
	Name() string
	Decode(p []byte) (string, DecodeStatus)
}

// NewCodec resolves an encoding name ("utf-8", "latin1", "shift_jis", ...).
func NewCodec(name string) (Codec, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	switch norm {
	case "", "utf-8", "utf8":
		return utf8Codec{}, nil
	}
	enc, err := htmlindex.Get(norm)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = norm
	}
	if canonical == "utf-8" {
		return utf8Codec{}, nil
	}
	return &textCodec{name: canonical, enc: enc}, nil
}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) Decode(p []byte) (string, DecodeStatus) {
	if utf8.Valid(p) {
		return string(p), DecodeOK
	}
	for i := 0; i < len(p); {
		if !utf8.FullRune(p[i:]) {
			return "", DecodeIncomplete
		}
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return "", DecodeInvalid
		}
		i += size
	}
	return "", DecodeInvalid
}

type textCodec struct {
	name string
	enc  encoding.Encoding
}

func (c *textCodec) Name() string { return c.name }

func (c *textCodec) Decode(p []byte) (string, DecodeStatus) {
	dec := c.enc.NewDecoder()
	dst := make([]byte, 4*len(p)+utf8.UTFMax)
	nDst, nSrc, err := dec.Transform(dst, p, false)
	switch {
	case errors.Is(err, transform.ErrShortSrc):
		return "", DecodeIncomplete
	case err != nil:
		return "", DecodeInvalid
	case nSrc < len(p):
		return "", DecodeIncomplete
	}
	out := dst[:nDst]
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", DecodeInvalid
	}
	return string(out), DecodeOK
}
