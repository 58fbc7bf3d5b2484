package raster

import (
	"encoding/base64"
	"strings"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

// Media types used in data URIs.
const (
	MimePNG = "image/png"
	MimeSVG = "image/svg+xml"
)

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI. Non-base64 URIs are rejected.
func ParseDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidFormat, "not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidFormat, "data URI has no payload")
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidFormat, "data URI is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode data URI")
	}
	return mime, data, nil
}
