package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SupportStatus is the tag of a Support value.
type SupportStatus uint8

const (
	SupportUnknown SupportStatus = iota
	SupportNotSupported
	SupportSupported
)

const (
	supportedTag    = "SUPPORTED"
	notSupportedTag = "NOT_SUPPORTED"
)

// Support says whether a wallet supports a capability, optionally with detail T.
// The zero value is unknown (not yet evaluated), distinct from NotSupported.
type Support[T any] struct {
	status SupportStatus
	detail *T
	// ref cites the evidence for a NotSupported value.
	ref References
}

// NotSupported is the evaluated-and-absent value.
func NotSupported[T any]() Support[T] { return Support[T]{status: SupportNotSupported} }

// FeatureSupported is supported without further detail.
func FeatureSupported[T any]() Support[T] { return Support[T]{status: SupportSupported} }

// Supported carries a detail object.
func Supported[T any](detail T) Support[T] {
	return Support[T]{status: SupportSupported, detail: &detail}
}

func (s Support[T]) Status() SupportStatus { return s.status }
func (s Support[T]) IsKnown() bool         { return s.status != SupportUnknown }
func (s Support[T]) IsSupported() bool     { return s.status == SupportSupported }
func (s Support[T]) IsNotSupported() bool  { return s.status == SupportNotSupported }

// Detail returns the detail object, if the value is supported with one.
func (s Support[T]) Detail() (T, bool) {
	if s.status != SupportSupported || s.detail == nil {
		var zero T
		return zero, false
	}
	return *s.detail, true
}

func (s Support[T]) References() References {
	if d, ok := s.Detail(); ok {
		return RefsOf(d)
	}
	return s.ref
}

// UnmarshalJSON accepts null, "SUPPORTED", "NOT_SUPPORTED", or {"support": ..., ...detail}.
// The object form of a supported value always carries a detail, even an empty one; a
// not-supported object keeps its ref.
func (s *Support[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Support[T]{}
		return nil
	}
	if trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return err
		}
		return s.setTag(tag)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("support: %w", err)
	}
	var tag string
	if raw, ok := obj["support"]; ok {
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("support tag: %w", err)
		}
	} else {
		tag = supportedTag
	}
	if err := s.setTag(tag); err != nil {
		return err
	}
	switch s.status {
	case SupportSupported:
		var d T
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return fmt.Errorf("support detail: %w", err)
		}
		s.detail = &d
	case SupportNotSupported:
		if raw, ok := obj["ref"]; ok {
			if err := json.Unmarshal(raw, &s.ref); err != nil {
				return fmt.Errorf("support ref: %w", err)
			}
		}
	}
	return nil
}

func (s *Support[T]) setTag(tag string) error {
	switch tag {
	case supportedTag:
		*s = Support[T]{status: SupportSupported}
	case notSupportedTag:
		*s = Support[T]{status: SupportNotSupported}
	default:
		return fmt.Errorf("support: unknown value %q", tag)
	}
	return nil
}

func (s Support[T]) MarshalJSON() ([]byte, error) {
	switch s.status {
	case SupportNotSupported:
		if len(s.ref) == 0 {
			return []byte(`{"support":"NOT_SUPPORTED"}`), nil
		}
		return json.Marshal(struct {
			Support string     `json:"support"`
			Ref     References `json:"ref"`
		}{notSupportedTag, s.ref})
	case SupportSupported:
		if s.detail == nil {
			return json.Marshal(supportedTag)
		}
		b, err := json.Marshal(s.detail)
		if err != nil {
			return nil, err
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, fmt.Errorf("support detail must encode as an object: %w", err)
		}
		obj["support"] = json.RawMessage(`"SUPPORTED"`)
		return json.Marshal(obj)
	}
	return []byte("null"), nil
}
