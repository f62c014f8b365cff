package tracekit

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Text carrier key set. These are the stable wire-level names; changing
// them breaks cross-service propagation.
const (
	fieldTraceID = "trace-id"
	fieldSpanID  = "span-id"
	fieldSampled = "sampled"

	// baggagePrefix namespaces baggage keys so they cannot collide with
	// caller-owned carrier entries.
	baggagePrefix = "baggage-"
)

// TextMapWriter is the injection side of a flat string key-value carrier.
// Any transport that can store string pairs (HTTP headers, message
// metadata, gRPC metadata) can implement it.
type TextMapWriter interface {
	// Set stores a key-value pair. Returning an error rejects the key and
	// aborts injection with ErrEncoding.
	Set(key, value string) error
}

// TextMapReader is the extraction side of a flat string key-value carrier.
type TextMapReader interface {
	// ForeachKey calls handler for every entry. If handler returns an
	// error, iteration stops and the error is propagated.
	ForeachKey(handler func(key, value string) error) error
}

// TextMapCarrier is a ready-made in-memory text carrier.
type TextMapCarrier map[string]string

// Set stores a key-value pair. Never rejects.
func (c TextMapCarrier) Set(key, value string) error {
	c[key] = value
	return nil
}

// ForeachKey iterates the carrier entries.
func (c TextMapCarrier) ForeachKey(handler func(key, value string) error) error {
	for k, v := range c {
		if err := handler(k, v); err != nil {
			return err
		}
	}
	return nil
}

// HTTPHeadersCarrier adapts an http.Header as a text carrier. Keys are
// stored in canonical header form and compared case-insensitively on
// extraction. Because http.Header canonicalizes key case, baggage keys
// propagated over HTTP come back in canonical form; case-preserving
// carriers like TextMapCarrier round-trip them exactly.
type HTTPHeadersCarrier http.Header

// Set stores the pair as a header.
func (c HTTPHeadersCarrier) Set(key, value string) error {
	http.Header(c).Set(key, value)
	return nil
}

// ForeachKey iterates all header entries, including repeated values.
func (c HTTPHeadersCarrier) ForeachKey(handler func(key, value string) error) error {
	for k, values := range c {
		for _, v := range values {
			if err := handler(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// injectText writes ctx into a text carrier using the stable key set.
func injectText(ctx SpanContext, carrier TextMapWriter, withBaggage bool) error {
	if err := carrier.Set(fieldTraceID, strconv.FormatUint(uint64(ctx.TraceID()), 10)); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrEncoding, fieldTraceID, err)
	}
	if err := carrier.Set(fieldSpanID, strconv.FormatUint(uint64(ctx.SpanID()), 10)); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrEncoding, fieldSpanID, err)
	}
	sampled := "0"
	if ctx.IsSampled() {
		sampled = "1"
	}
	if err := carrier.Set(fieldSampled, sampled); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrEncoding, fieldSampled, err)
	}
	if !withBaggage {
		return nil
	}
	var injectErr error
	ctx.ForeachBaggageItem(func(k, v string) bool {
		if err := carrier.Set(baggagePrefix+k, v); err != nil {
			injectErr = fmt.Errorf("%w: %q: %v", ErrEncoding, baggagePrefix+k, err)
			return false
		}
		return true
	})
	return injectErr
}

// extractText reads a SpanContext from a text carrier. Unknown keys are
// ignored. Field and prefix matching is case-insensitive so http.Header's
// canonical form round-trips; baggage keys are taken verbatim from the
// carrier, so any case change is the carrier's doing (http.Header
// canonicalizes, TextMapCarrier preserves).
func extractText(carrier TextMapReader, withBaggage bool) (SpanContext, error) {
	var (
		traceID    TraceID
		spanID     SpanID
		sampled    bool
		baggage    map[string]string
		seenTrace  bool
		seenSpan   bool
		seenFlag   bool
		seenAnyKey bool
	)

	err := carrier.ForeachKey(func(key, value string) error {
		switch k := strings.ToLower(key); {
		case k == fieldTraceID:
			v, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: malformed %q value %q", ErrCorruptedContext, fieldTraceID, value)
			}
			traceID = TraceID(v)
			seenTrace = true
			seenAnyKey = true
		case k == fieldSpanID:
			v, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: malformed %q value %q", ErrCorruptedContext, fieldSpanID, value)
			}
			spanID = SpanID(v)
			seenSpan = true
			seenAnyKey = true
		case k == fieldSampled:
			switch value {
			case "1":
				sampled = true
			case "0":
				sampled = false
			default:
				return fmt.Errorf("%w: malformed %q value %q", ErrCorruptedContext, fieldSampled, value)
			}
			seenFlag = true
			seenAnyKey = true
		case strings.HasPrefix(k, baggagePrefix):
			seenAnyKey = true
			if !withBaggage {
				return nil
			}
			if baggage == nil {
				baggage = make(map[string]string)
			}
			// Only the prefix match is case-insensitive; the baggage key
			// itself keeps the carrier's casing so round-trips through
			// case-preserving carriers are exact.
			baggage[key[len(baggagePrefix):]] = value
		}
		// Anything else is a caller-owned key.
		return nil
	})
	if err != nil {
		return SpanContext{}, err
	}

	if !seenAnyKey {
		return SpanContext{}, ErrTraceContextNotFound
	}
	if !seenTrace || !seenSpan || !seenFlag {
		return SpanContext{}, fmt.Errorf("%w: carrier is missing required trace fields", ErrCorruptedContext)
	}
	return NewSpanContext(traceID, spanID, sampled, baggage), nil
}

// Binary carrier layout: 8-byte big-endian trace ID, 8-byte big-endian
// span ID, 1-byte sampled flag, uvarint baggage count, then per entry
// uvarint key length, key bytes, uvarint value length, value bytes.
const binaryHeaderLen = 8 + 8 + 1

// maxBaggageItemLen bounds a single declared key or value length so that a
// corrupted count cannot trigger a huge allocation.
const maxBaggageItemLen = 1 << 20

// injectBinary writes ctx to w in the binary layout.
func injectBinary(ctx SpanContext, w io.Writer, withBaggage bool) error {
	buf := make([]byte, binaryHeaderLen, binaryHeaderLen+binary.MaxVarintLen64)
	binary.BigEndian.PutUint64(buf[0:8], uint64(ctx.TraceID()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(ctx.SpanID()))
	if ctx.IsSampled() {
		buf[16] = 1
	}

	count := 0
	if withBaggage {
		count = ctx.BaggageLen()
	}
	buf = binary.AppendUvarint(buf, uint64(count))
	if count > 0 {
		ctx.ForeachBaggageItem(func(k, v string) bool {
			buf = binary.AppendUvarint(buf, uint64(len(k)))
			buf = append(buf, k...)
			buf = binary.AppendUvarint(buf, uint64(len(v)))
			buf = append(buf, v...)
			return true
		})
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return nil
}

// extractBinary reads a SpanContext from r. Empty input means no trace
// context; partial or inconsistent input means corruption.
func extractBinary(r io.Reader, withBaggage bool) (SpanContext, error) {
	br := bufio.NewReader(r)

	var header [binaryHeaderLen]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		if err == io.EOF {
			return SpanContext{}, ErrTraceContextNotFound
		}
		return SpanContext{}, fmt.Errorf("%w: truncated header: %v", ErrCorruptedContext, err)
	}

	traceID := TraceID(binary.BigEndian.Uint64(header[0:8]))
	spanID := SpanID(binary.BigEndian.Uint64(header[8:16]))
	var sampled bool
	switch header[16] {
	case 0:
		sampled = false
	case 1:
		sampled = true
	default:
		return SpanContext{}, fmt.Errorf("%w: invalid sampled byte 0x%02x", ErrCorruptedContext, header[16])
	}

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return SpanContext{}, fmt.Errorf("%w: truncated baggage count: %v", ErrCorruptedContext, err)
	}

	var baggage map[string]string
	for i := uint64(0); i < count; i++ {
		key, err := readBaggageString(br)
		if err != nil {
			return SpanContext{}, err
		}
		value, err := readBaggageString(br)
		if err != nil {
			return SpanContext{}, err
		}
		if withBaggage {
			if baggage == nil {
				baggage = make(map[string]string)
			}
			baggage[key] = value
		}
	}

	return NewSpanContext(traceID, spanID, sampled, baggage), nil
}

func readBaggageString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", fmt.Errorf("%w: truncated baggage length: %v", ErrCorruptedContext, err)
	}
	if n > maxBaggageItemLen {
		return "", fmt.Errorf("%w: baggage entry length %d exceeds limit", ErrCorruptedContext, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", fmt.Errorf("%w: truncated baggage entry: %v", ErrCorruptedContext, err)
	}
	return string(buf), nil
}
