package dom

import "github.com/google/uuid"

// Option configures a Document.
type Option func(*Document)

// WithValidator sets the validator consulted before structural changes.
func WithValidator(v Validator) Option {
	return func(d *Document) {
		d.validator = v
	}
}

// WithTextNormalization normalizes inserted text to Unicode NFC.
func WithTextNormalization() Option {
	return func(d *Document) {
		d.normalize = true
	}
}

// WithUUID sets the document identity instead of generating one.
func WithUUID(id uuid.UUID) Option {
	return func(d *Document) {
		d.uuid = id
	}
}
