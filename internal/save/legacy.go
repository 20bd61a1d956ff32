package save

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

// legacyKey is the fixed XOR key of 0.1.0 encrypted saves. It obfuscates, nothing more.
const legacyKey = "tomeclicker-save-key"

const (
	legacyPlainWarning     = "This save is not eligible for leaderboard participation"
	legacyPlainImportNote  = "This save is not eligible for leaderboard participation due to unencrypted import."
	legacyEncryptedWarning = "Save was migrated from the deprecated 0.1.0 encrypted format. Export again to upgrade it."
)

type legacyWrapper struct {
	Encrypted bool   `json:"encrypted"`
	Data      string `json:"data"`
	Hash      string `json:"hash"`
	Version   string `json:"version"`
}

// xorLatin1 applies the key to a string of Latin-1 code units.
func xorLatin1(units []byte) []byte {
	out := make([]byte, len(units))
	for i, b := range units {
		out[i] = b ^ legacyKey[i%len(legacyKey)]
	}
	return out
}

// DecodeLegacy reverses the 0.1.0 scheme: base64 over XOR-ed Latin-1 code units.
// The result is UTF-8 JSON.
func DecodeLegacy(data string) ([]byte, error) {
	units, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("decode legacy base64: %w", err)
	}
	plain := xorLatin1(units)

	var sb strings.Builder
	sb.Grow(len(plain))
	for _, b := range plain {
		sb.WriteRune(rune(b))
	}
	return []byte(sb.String()), nil
}

// encodeLegacyPayload is the inverse of DecodeLegacy. JSON text is first reduced to
// ASCII with \u escapes so that every code unit fits in a byte.
func encodeLegacyPayload(jsonText []byte) string {
	return base64.StdEncoding.EncodeToString(xorLatin1(asciiJSON(jsonText)))
}

// asciiJSON escapes every non-ASCII rune. Outside strings valid JSON is already ASCII.
func asciiJSON(b []byte) []byte {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&sb, `\u%04x`, r)
	}
	return []byte(sb.String())
}

// legacyHash is the 32-bit string hash 0.1.0 stored next to encrypted data, in base 36.
// Imports carry it but never verify it.
func legacyHash(text string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(text)) {
		h = h<<5 - h + int32(u)
	}
	return strconv.FormatInt(int64(h), 36)
}

// EncodeLegacy writes st in one of the two 0.1.0 wire formats. It exists so older
// clients can still read exports and so the import path can be exercised end to end.
func EncodeLegacy(st GameState, encrypted bool, now time.Time) (string, error) {
	body, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(body, &flat); err != nil {
		return "", fmt.Errorf("flatten state: %w", err)
	}
	delete(flat, "story")
	flat["version"] = LegacyVersion
	flat["timestamp"] = now.UnixMilli()

	if !encrypted {
		flat["encrypted"] = false
		flat["warning"] = legacyPlainWarning
		out, err := json.Marshal(flat)
		if err != nil {
			return "", fmt.Errorf("marshal legacy save: %w", err)
		}
		return string(out), nil
	}

	inner, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("marshal legacy save: %w", err)
	}
	inner = asciiJSON(inner)
	out, err := json.Marshal(legacyWrapper{
		Encrypted: true,
		Data:      encodeLegacyPayload(inner),
		Hash:      legacyHash(string(inner)),
		Version:   LegacyVersion,
	})
	if err != nil {
		return "", fmt.Errorf("marshal legacy wrapper: %w", err)
	}
	return string(out), nil
}
