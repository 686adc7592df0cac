// Package hcl2 is the public facade (component A, spec.md §1, §6): Load,
// Loads, Parse, Parses, Transform, ReverseTransform, and Writes. It holds no
// process-wide state beyond the shared parser (cst, spec.md §5); every
// function here is safe to call concurrently.
package hcl2

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/hcl2go/hcl2/cst"
	"github.com/hcl2go/hcl2/reconstruct"
	"github.com/hcl2go/hcl2/reverse"
	"github.com/hcl2go/hcl2/transform"
	"github.com/hcl2go/hcl2/value"
)

// Option configures the facade's optional behavior.
type Option func(*config)

type config struct {
	withMeta bool
	logger   zerolog.Logger
}

// WithMeta attaches __start_line__/__end_line__ metadata to every block
// mapping the forward transform produces (spec.md §3, §6).
func WithMeta() Option {
	return func(c *config) { c.withMeta = true }
}

// WithLogger wires a structured logger; the library is silent by default
// (spec.md §5 — no unsolicited I/O from pure functions).
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) *config {
	c := &config{logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Parses parses HCL2 source text into a CST (spec.md §4.1).
func Parses(text string) (*cst.Body, error) {
	body, err := cst.Parses(text)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: parse")
	}
	return body, nil
}

// Parse reads and parses HCL2 source from r.
func Parse(r io.Reader) (*cst.Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: read")
	}
	return Parses(string(data))
}

// Loads parses text and forward-transforms it in one step (spec.md §4.1,
// §4.2).
func Loads(text string, opts ...Option) (*value.Map, error) {
	c := newConfig(opts)
	body, err := cst.Parses(text)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: parse")
	}
	c.logger.Debug().Int("items", len(body.Items)).Msg("parsed body")
	m, err := transform.Body(body, transform.Options{WithMeta: c.withMeta})
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: transform")
	}
	return m, nil
}

// Load reads HCL2 source from r and forward-transforms it.
func Load(r io.Reader, opts ...Option) (*value.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: read")
	}
	return Loads(string(data), opts...)
}

// LoadFile reads and forward-transforms the HCL2 file at path.
func LoadFile(path string, opts ...Option) (*value.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: open %s", path)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Transform forward-transforms an already-parsed CST (spec.md §4.2).
func Transform(body *cst.Body, opts ...Option) (*value.Map, error) {
	c := newConfig(opts)
	m, err := transform.Body(body, transform.Options{WithMeta: c.withMeta})
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: transform")
	}
	return m, nil
}

// ReverseTransform builds a CST from a value tree (spec.md §4.4).
func ReverseTransform(m *value.Map) (*cst.Body, error) {
	body, err := reverse.Body(m)
	if err != nil {
		return nil, errors.Wrapf(err, "hcl2: reverse transform")
	}
	return body, nil
}

// Writes renders a CST back to source text (spec.md §4.3).
func Writes(body *cst.Body) (string, error) {
	text, err := reconstruct.Writes(body)
	if err != nil {
		return "", errors.Wrapf(err, "hcl2: reconstruct")
	}
	return text, nil
}

// Dumps is the round-trip convenience: value tree straight to text
// (ReverseTransform followed by Writes).
func Dumps(m *value.Map) (string, error) {
	body, err := ReverseTransform(m)
	if err != nil {
		return "", err
	}
	return Writes(body)
}
