//
// Package signer builds the signatures exchanges require on private requests.
//
// The common scheme is an HMAC-SHA256 over timestamp + METHOD + path + payload, base64 encoded.
// The payload is opaque here: callers pass the exact query string ("?a=1&b=2") or compact JSON body
// that will go over the wire. Graviex and Kraken use their own schemes, found alongside.
//
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//
// Now is the clock signing contexts are stamped with.
//
var Now = time.Now

//
// Context is everything that goes into a single request's signature. It must be built right before
// the request is sent and never reused; exchanges reject stale timestamps.
//
type Context struct {
	Timestamp int64
	Method    string
	Path      string
	Payload   string
}

//
// NewContext stamps a fresh millisecond timestamp.
//
func NewContext(method, path, payload string) Context {
	return Context{
		Timestamp: Now().UnixMilli(),
		Method:    method,
		Path:      path,
		Payload:   payload,
	}
}

//
// Canonical returns the string to sign.
//
func (o Context) Canonical() string {
	return Canonical(o.Method, o.Path, o.Payload, o.Timestamp)
}

//
// Sign signs the context with the secret.
//
func (o Context) Sign(secret string) string {
	return Sign(secret, o.Method, o.Path, o.Payload, o.Timestamp)
}

func Canonical(method, path, payload string, timestamp int64) string {
	return strconv.FormatInt(timestamp, 10) + strings.ToUpper(method) + path + payload
}

//
// Sign returns base64(HMAC-SHA256(secret, timestamp + METHOD + path + payload)).
//
func Sign(secret, method, path, payload string, timestamp int64) string {
	return base64Sum256(secret, Canonical(method, path, payload, timestamp))
}

//
// SignPassphrase returns the passphrase form KuCoin expects for version 2 API keys.
//
func SignPassphrase(secret, passphrase string) string {
	return base64Sum256(secret, passphrase)
}

//
// SignHex returns the hex encoded HMAC-SHA256 of message. Graviex signs "METHOD|path|query" this
// way.
//
func SignHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))

	return hex.EncodeToString(mac.Sum(nil))
}

//
// SignKraken returns base64(HMAC-SHA512(base64decode(secret), path + SHA256(nonce + body))).
//
func SignKraken(secret, path, nonce, body string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("kraken secret is not valid base64: %w", err)
	}

	digest := sha256.Sum256([]byte(nonce + body))

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func base64Sum256(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
