package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-persist/layering"
)

// Context identifies the slice a persisted record belongs to.
type Context struct {
	Slice string
	Key   string
}

// PreHook lets callers rewrite an object payload before decoding, e.g. to
// rename fields written by an older build.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the restored state after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON decoding when provided. Its result
// is merged over the base state so nil maps, slices and pointers keep their
// defaults.
type CustomDecoder[T any] func(Context, []byte) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder restores persisted JSON records into typed slice state.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig[T any](configure func(*json.Decoder)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode restores raw over a copy of base. The merge is shallow: a top-level
// field or map key present in raw replaces the default whole, and one
// missing from raw keeps its value from base. base itself is never modified.
func (d *Decoder[T]) Decode(ctx Context, raw []byte, base T) (T, error) {
	var zero T

	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, fmt.Errorf("hydrate: empty payload for slice %q", ctx.Slice)
	}

	current := raw
	if len(d.preHooks) > 0 {
		rewritten, err := d.runPreHooks(ctx, raw)
		if err != nil {
			return zero, err
		}
		current = rewritten
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for slice %q failed: %w", ctx.Slice, err)
		}
		result = layering.MergeLayers(decoded, base)
	} else {
		decoder := json.NewDecoder(bytes.NewReader(current))
		for _, configure := range d.configureDec {
			if configure != nil {
				configure(decoder)
			}
		}
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("hydrate: decode slice %q: %w", ctx.Slice, err)
		}
		if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
			return zero, fmt.Errorf("hydrate: decode slice %q: trailing data after record", ctx.Slice)
		}
		result = overlayDefaults(result, base, current)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for slice %q failed: %w", ctx.Slice, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) runPreHooks(ctx Context, raw []byte) ([]byte, error) {
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("hydrate: pre-hooks for slice %q need an object payload: %w", ctx.Slice, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for slice %q failed: %w", ctx.Slice, err)
		}
		if next != nil {
			payload = next
		}
	}

	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hydrate: marshal payload for slice %q: %w", ctx.Slice, err)
	}
	return buffer, nil
}
