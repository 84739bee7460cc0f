package skins

import (
	"bytes"
	"errors"

	"github.com/tidwall/gjson"

	"ely.by/tailor/internal/textures"
)

var (
	EmptyReply        = errors.New("the reply is empty")
	ErrorBearingReply = errors.New("the reply contains an error")
	MalformedReply    = errors.New("the reply is not a JSON document")
	IncompleteReply   = errors.New("the reply has no value or signature")
)

var errorToken = []byte("error")

// ParseReply extracts the signed textures property from the reply of one of the skin sources.
// Sources don't share a single reply schema, so the first string "value" and "signature" members
// found anywhere in the document are used.
func ParseReply(reply []byte) (*textures.Property, error) {
	if len(bytes.TrimSpace(reply)) == 0 {
		return nil, EmptyReply
	}

	if bytes.Contains(reply, errorToken) {
		return nil, ErrorBearingReply
	}

	if !gjson.ValidBytes(reply) {
		return nil, MalformedReply
	}

	document := gjson.ParseBytes(reply)
	value, hasValue := findStringMember(document, "value")
	signature, hasSignature := findStringMember(document, "signature")
	if !hasValue || !hasSignature || value == "" || signature == "" {
		return nil, IncompleteReply
	}

	return &textures.Property{
		Name:      textures.PropertyName,
		Value:     value,
		Signature: signature,
	}, nil
}

// findStringMember walks the document in order and returns the first string member with the passed name
func findStringMember(node gjson.Result, name string) (string, bool) {
	var result string
	var found bool
	isObject := node.IsObject()
	node.ForEach(func(key, value gjson.Result) bool {
		if isObject && key.String() == name && value.Type == gjson.String {
			result, found = value.String(), true
			return false
		}

		if value.IsObject() || value.IsArray() {
			result, found = findStringMember(value, name)
			if found {
				return false
			}
		}

		return true
	})

	return result, found
}
