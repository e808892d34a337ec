package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/tagnet/pkg/tagnet/pipeline"
)

const maxLineSize = 4 << 20

func (r *Reader) initJSONL(in io.Reader, opts Options) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	var line int64

	r.next = func() (pipeline.Record, error) {
		for sc.Scan() {
			line++
			raw := bytes.TrimSpace(sc.Bytes())
			if len(raw) == 0 {
				continue
			}

			var obj map[string]json.RawMessage
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			if err := dec.Decode(&obj); err != nil {
				r.skip(line, err)
				continue
			}

			var rec pipeline.Record
			if opts.Key != "" {
				rec.Key = scalar(lookup(obj, opts.Key))
			}
			if v, ok := fieldValue(lookup(obj, opts.Field)); ok {
				rec.Field = &v
			}
			return rec, nil
		}
		if err := sc.Err(); err != nil {
			return pipeline.Record{}, fmt.Errorf("read %s: %w", r.path, err)
		}
		return pipeline.Record{}, io.EOF
	}
}

func lookup(obj map[string]json.RawMessage, name string) json.RawMessage {
	if v, ok := obj[name]; ok {
		return v
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// fieldValue turns a JSON value into a raw tag field. Arrays are kept in
// their JSON text, which the extractor parses as a list literal.
func fieldValue(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}
	switch v[0] {
	case '[':
		return string(v), true
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	default:
		return string(v), true
	}
}

func scalar(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return string(v)
}
