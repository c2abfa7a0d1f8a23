package partstream

import (
	"math"
	"mime"
	"net/textproto"

	"go.uber.org/zap"

	"github.com/mazrean/partstream/internal/completion"
)

// Parser streams the parts of multipart bodies delimited by one boundary.
// A Parser holds configuration only and may be reused across requests.
type Parser struct {
	boundary   string
	newTracker func(completion.DoneFunc) completion.ITracker
	parserConfig
}

func NewParser(boundary string, options ...ParserOption) *Parser {
	c := parserConfig{
		maxParts:              defaultMaxParts,
		maxHeaders:            defaultMaxHeaders,
		maxFields:             defaultMaxFields,
		maxFileSize:           defaultMaxFileSize,
		maxFieldSize:          defaultMaxFieldSize,
		maxConcurrentHandlers: -1,
		fileConsumer:          BufferConsumer(defaultMaxMemFileSize),
		logger:                zap.NewNop(),
		observer:              nopObserver{},
	}
	for _, opt := range options {
		opt(&c)
	}

	return &Parser{
		boundary:     boundary,
		newTracker:   newTracker,
		parserConfig: c,
	}
}

func newTracker(done completion.DoneFunc) completion.ITracker {
	return completion.NewTracker(done)
}

// IsMultipart reports whether the parser was created for a multipart body.
func (p *Parser) IsMultipart() bool {
	return p.boundary != ""
}

// Boundary returns the boundary the parser splits parts on.
func (p *Parser) Boundary() string {
	return p.boundary
}

type parserConfig struct {
	maxParts              uint
	maxHeaders            uint
	maxFields             uint
	maxFileSize           DataSize
	maxFieldSize          DataSize
	limitAsError          bool
	maxConcurrentHandlers int
	fieldHandler          FieldHandler
	fileConsumer          FileConsumer
	logger                *zap.Logger
	observer              Observer
}

// with returns a copy of the configuration with per-call overrides applied.
func (c parserConfig) with(options []ParserOption) parserConfig {
	for _, opt := range options {
		opt(&c)
	}

	return c
}

type ParserOption func(*parserConfig)

type DataSize int64

const (
	_ DataSize = 1 << (iota * 10)
	KB
	MB
	GB
)

const (
	defaultMaxParts       = 10000
	defaultMaxHeaders     = 10000
	defaultMaxFields      = math.MaxUint32
	defaultMaxFileSize    = DataSize(math.MaxInt64)
	defaultMaxFieldSize   = 1 * MB
	defaultMaxMemFileSize = 32 * MB
)

// WithMaxParts sets the maximum number of parts to be parsed.
// Parts over the limit are dropped and Framer.LimitReached reports it.
// default: 10000
func WithMaxParts(maxParts uint) ParserOption {
	return func(c *parserConfig) {
		c.maxParts = maxParts
	}
}

// WithMaxHeaders sets the maximum number of headers to be parsed.
// default: 10000
func WithMaxHeaders(maxHeaders uint) ParserOption {
	return func(c *parserConfig) {
		c.maxHeaders = maxHeaders
	}
}

// WithMaxFields sets the maximum number of non-file fields to be parsed.
// Fields over the limit are dropped and Framer.LimitReached reports it.
// default: unlimited
func WithMaxFields(maxFields uint) ParserOption {
	return func(c *parserConfig) {
		c.maxFields = maxFields
	}
}

// WithMaxFileSize sets the maximum size of a file part.
// Bytes over the limit are dropped and the part is flagged with LimitExceeded.
// default: unlimited
func WithMaxFileSize(maxFileSize DataSize) ParserOption {
	return func(c *parserConfig) {
		c.maxFileSize = maxFileSize
	}
}

// WithMaxFieldSize sets the maximum size of a non-file field value.
// default: 1MB
func WithMaxFieldSize(maxFieldSize DataSize) ParserOption {
	return func(c *parserConfig) {
		c.maxFieldSize = maxFieldSize
	}
}

// WithLimitAsError makes exceeding a size or count limit fail the parsing
// instead of flagging the part or dropping the rest.
func WithLimitAsError() ParserOption {
	return func(c *parserConfig) {
		c.limitAsError = true
	}
}

// WithMaxConcurrentHandlers bounds the number of handlers wrapped by Async
// running at the same time. Framing waits while the bound is reached.
// n <= 0 means unlimited.
// default: unlimited
func WithMaxConcurrentHandlers(n int) ParserOption {
	return func(c *parserConfig) {
		if n <= 0 {
			n = -1
		}
		c.maxConcurrentHandlers = n
	}
}

// WithFieldHandler sets the function called for every non-file field.
func WithFieldHandler(fn FieldHandler) ParserOption {
	return func(c *parserConfig) {
		c.fieldHandler = fn
	}
}

// WithFileConsumer sets the strategy Attach uses to consume file parts.
// default: BufferConsumer(32MB)
func WithFileConsumer(consumer FileConsumer) ParserOption {
	return func(c *parserConfig) {
		c.fileConsumer = consumer
	}
}

// WithLogger sets the logger. default: no logging
func WithLogger(logger *zap.Logger) ParserOption {
	return func(c *parserConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithObserver sets the observer notified of part and session events.
func WithObserver(observer Observer) ParserOption {
	return func(c *parserConfig) {
		if observer == nil {
			observer = nopObserver{}
		}
		c.observer = observer
	}
}

type Header struct {
	dispositionParams map[string]string
	header            textproto.MIMEHeader
}

func newHeader(h textproto.MIMEHeader) Header {
	contentDisposition := h.Get("Content-Disposition")
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		params = make(map[string]string)
	}

	return Header{
		dispositionParams: params,
		header:            h,
	}
}

// Get returns the first value associated with the given key.
// If there are no values associated with the key, Get returns "".
func (h Header) Get(key string) string {
	return h.header.Get(key)
}

// ContentType returns the value of the "Content-Type" header field.
// If there are no values associated with the key, ContentType returns "".
func (h Header) ContentType() string {
	return h.header.Get("Content-Type")
}

// Encoding returns the value of the "Content-Transfer-Encoding" header field.
// If there are no values associated with the key, Encoding returns "".
func (h Header) Encoding() string {
	return h.header.Get("Content-Transfer-Encoding")
}

// Name returns the value of the "name" parameter in the "Content-Disposition" header field.
// If there are no values associated with the key, Name returns "".
func (h Header) Name() string {
	return h.dispositionParams["name"]
}

// FileName returns the value of the "filename" parameter in the "Content-Disposition" header field.
// If there are no values associated with the key, FileName returns "".
func (h Header) FileName() string {
	return h.dispositionParams["filename"]
}

// IsFile reports whether the part carries a "filename" parameter.
func (h Header) IsFile() bool {
	_, ok := h.dispositionParams["filename"]
	return ok
}
