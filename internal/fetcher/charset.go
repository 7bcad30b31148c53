package fetcher

import (
	"mime"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// decodeBody converts raw to UTF-8 according to the charset parameter of
// contentType. Bodies without a declared charset, or already UTF-8, are
// returned unchanged.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	charset := charsetOf(contentType)
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return raw, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: unsupported charset %q", charset)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: decode %s body", charset)
	}
	return out, nil
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}
