package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Format identifies which generation of save a payload belongs to.
type Format string

const (
	FormatEnvelope        Format = "envelope"
	FormatLegacyEncrypted Format = "legacy-encrypted"
	FormatLegacyPlain     Format = "legacy-plain"
	FormatUnknown         Format = "unknown"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatEnvelope, FormatLegacyEncrypted, FormatLegacyPlain, FormatUnknown:
		return true
	default:
		return false
	}
}

// Detect classifies a parsed top-level save object. Versioned envelopes carry
// version and gameState; both legacy shapes carry a boolean encrypted flag.
func Detect(fields map[string]json.RawMessage) Format {
	_, hasVersion := fields["version"]
	_, hasState := fields["gameState"]
	if hasVersion && hasState {
		return FormatEnvelope
	}
	switch string(bytes.TrimSpace(fields["encrypted"])) {
	case "true":
		return FormatLegacyEncrypted
	case "false":
		return FormatLegacyPlain
	default:
		return FormatUnknown
	}
}

// ErrorKind names the stage at which an import failed.
type ErrorKind string

const (
	KindParse      ErrorKind = "parse"
	KindFormat     ErrorKind = "format"
	KindDecode     ErrorKind = "decode"
	KindValidation ErrorKind = "validation"
)

// ImportError is returned for any rejected import. Nothing is applied when it is.
type ImportError struct {
	Kind     ErrorKind
	Reason   string
	Problems []string
	Err      error
}

func (e *ImportError) Error() string {
	msg := e.Reason
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }
