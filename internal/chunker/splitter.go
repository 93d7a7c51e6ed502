// Package chunker splits source text into bounded, overlapping chunks ready for embedding.
package chunker

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/model"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
)

type Mode string

const (
	ModeWindow    Mode = "window"
	ModeParagraph Mode = "paragraph"
	ModeMarkdown  Mode = "markdown"
	ModeAuto      Mode = "auto"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
	DefaultMinSignal = 20
)

type options struct {
	size      int
	overlap   int
	minSignal int
	mode      Mode
}

type Option func(*options)

func WithChunkSize(size int) Option {
	return func(o *options) { o.size = size }
}

func WithOverlap(overlap int) Option {
	return func(o *options) { o.overlap = overlap }
}

func WithMinSignal(n int) Option {
	return func(o *options) { o.minSignal = n }
}

func WithMode(mode Mode) Option {
	return func(o *options) { o.mode = mode }
}

// Splitter is safe for concurrent use; it holds no state besides its options.
type Splitter struct {
	opts options
}

// segment is a piece of the block before it becomes a chunk. offset is in runes.
type segment struct {
	text    string
	offset  int
	heading string
}

func NewSplitter(opts ...Option) (*Splitter, error) {
	o := options{
		size:      DefaultChunkSize,
		overlap:   DefaultOverlap,
		minSignal: DefaultMinSignal,
		mode:      ModeAuto,
	}
	for _, fn := range opts {
		fn(&o)
	}
	s := &Splitter{opts: o}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Splitter) validate() error {
	o := s.opts
	if o.size <= 0 {
		return appErr.New(appErr.ErrConfig, "chunk size must be positive, got %d", o.size)
	}
	if o.overlap < 0 {
		return appErr.New(appErr.ErrConfig, "overlap must not be negative, got %d", o.overlap)
	}
	if o.size-o.overlap <= 0 {
		return appErr.New(appErr.ErrConfig, "overlap %d must be smaller than chunk size %d", o.overlap, o.size)
	}
	switch o.mode {
	case ModeWindow, ModeParagraph, ModeMarkdown, ModeAuto:
	default:
		return appErr.New(appErr.ErrConfig, "unknown chunk mode %q", o.mode)
	}
	return nil
}

// Split returns the accepted chunks of block in emission order. Ordinals run 0..n-1 over the
// accepted chunks only.
func (s *Splitter) Split(ctx context.Context, block, sourceRef string) ([]model.Chunk, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("source_ref", sourceRef))
	mode := s.resolveMode(block, sourceRef)
	var segs []segment
	switch {
	case utf8.RuneCountInString(block) <= s.opts.size:
		segs = []segment{{text: block}}
	case mode == ModeWindow:
		segs = s.windowSegments([]rune(block), 0)
	case mode == ModeParagraph:
		segs = s.paragraphSegments(block, 0)
	case mode == ModeMarkdown:
		segs = s.markdownSegments(block)
	}

	accepted := make([]segment, 0, len(segs))
	for _, seg := range segs {
		if !HasSignal(seg.text, s.opts.minSignal) {
			logger.Debug("low signal segment dropped",
				zap.Int("offset", seg.offset), zap.Int("signal", SignalLength(seg.text)))
			continue
		}
		accepted = append(accepted, seg)
	}

	logger.Debug("block split",
		zap.String("mode", string(mode)),
		zap.Int("size", s.opts.size),
		zap.Int("overlap", s.opts.overlap),
		zap.Int("segments", len(segs)),
		zap.Int("accepted", len(accepted)),
	)

	chunks := make([]model.Chunk, 0, len(accepted))
	for i, seg := range accepted {
		chunks = append(chunks, model.Chunk{
			ID:            ChunkID(sourceRef, seg.text),
			Text:          seg.text,
			Ordinal:       i,
			TotalInSource: len(accepted),
			SourceRef:     sourceRef,
			Offset:        seg.offset,
			Header:        Header(sourceRef, seg.heading),
		})
	}
	return chunks, nil
}

func (s *Splitter) resolveMode(block, sourceRef string) Mode {
	if s.opts.mode != ModeAuto {
		return s.opts.mode
	}
	switch strings.ToLower(path.Ext(refPath(sourceRef))) {
	case ".md", ".markdown":
		return ModeMarkdown
	}
	if hasParagraphBreak(block) {
		return ModeParagraph
	}
	return ModeWindow
}

func (s *Splitter) step() int {
	return s.opts.size - s.opts.overlap
}

// windowSegments slides a chunk-size window over runes. The last window is the first one that
// reaches the end of the text.
func (s *Splitter) windowSegments(runes []rune, base int) []segment {
	if len(runes) == 0 {
		return nil
	}
	var out []segment
	for start := 0; ; start += s.step() {
		end := start + s.opts.size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, segment{text: string(runes[start:end]), offset: base + start})
		if end == len(runes) {
			break
		}
	}
	return out
}
