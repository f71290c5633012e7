package http

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineLength bounds a single line of a text resource.
const maxLineLength = 16 * 1024 * 1024

// TextReader is a decoded UTF-8 view over an open resource.
type TextReader struct {
	io.Reader
	resp *Response
}

// Close releases the underlying connection.
func (t *TextReader) Close() error {
	return t.resp.Close()
}

// OpenText performs a GET request and returns the body decoded as UTF-8.
//
// A leading byte order mark is removed and invalid byte sequences are
// replaced with U+FFFD, so the parser only ever sees valid text.
// The caller must close the returned reader.
func (c *Client) OpenText(ctx context.Context, url string) (*TextReader, error) {
	resp, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return &TextReader{Reader: DecodeUTF8(resp), resp: resp}, nil
}

// GetLines fetches a text resource and returns its lines in source order.
//
// Lines end at "\n", "\r\n" or a lone "\r"; the terminators are not included and a final
// terminator does not produce a trailing empty line.
//
// Example:
//
//	lines, err := client.GetLines(ctx, "https://example.com/iris.csv")
func (c *Client) GetLines(ctx context.Context, url string) ([]string, error) {
	text, err := c.OpenText(ctx, url)
	if err != nil {
		return nil, err
	}
	defer text.Close()

	return ReadLines(text)
}

// DecodeUTF8 wraps r with a UTF-8 decoder that strips a leading BOM.
func DecodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadLines splits r into lines ending at "\n", "\r\n" or a lone "\r".
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	scanner.Split(scanLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// scanLines is bufio.ScanLines extended to old Mac line endings.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// a "\r" as the last byte may be the start of "\r\n"
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i], nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
