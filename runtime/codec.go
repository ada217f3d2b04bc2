package runtime

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrUnknownFormat = errors.New("unknown event format")

// Format is the framing of an event stream.
type Format int

const (
	// FormatJSON is one JSON object per event, whitespace separated.
	FormatJSON Format = iota
	// FormatProto is a sequence of google.protobuf.Struct messages, each
	// prefixed with its varint encoded length.
	FormatProto
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatProto:
		return "proto"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatJSON, FormatProto} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return FormatJSON, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ReadEvents decodes every event in r.
func ReadEvents(r io.Reader, f Format) ([]*Event, error) {
	br := bufio.NewReader(r)
	var events []*Event
	next := nextJSON(br)
	if f == FormatProto {
		next = nextProto(br)
	}
	for {
		ev, err := next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}

func nextJSON(r io.Reader) func() (*Event, error) {
	dec := json.NewDecoder(r)
	return func() (*Event, error) {
		ev := &Event{}
		if err := dec.Decode(ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}

func nextProto(r *bufio.Reader) func() (*Event, error) {
	return func() (*Event, error) {
		s := &structpb.Struct{}
		if err := protodelim.UnmarshalFrom(r, s); err != nil {
			return nil, err
		}
		return EventFromStruct(s)
	}
}

// WriteEvents encodes events to w in order.
func WriteEvents(w io.Writer, f Format, events []*Event) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, ev := range events {
		var err error
		if f == FormatProto {
			err = writeProto(bw, ev)
		} else {
			err = enc.Encode(ev)
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeProto(w io.Writer, ev *Event) error {
	s, err := ev.ToStruct()
	if err != nil {
		return err
	}
	_, err = protodelim.MarshalTo(w, s)
	return err
}
