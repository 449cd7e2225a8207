package logging

// Field names for structured logging.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"

	// Document fields.
	FieldDocument  = "document"
	FieldOffset    = "offset"
	FieldRange     = "range"
	FieldElement   = "element"
	FieldAttribute = "attribute"
	FieldPrefix    = "prefix"
	FieldLength    = "length"

	// Layout fields.
	FieldWidth = "width"
	FieldBoxes = "boxes"
	FieldRows  = "rows"

	// History fields.
	FieldUndo  = "undo"
	FieldRedo  = "redo"
	FieldDepth = "depth"

	// Build fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Configuration fields.
	FieldLevel  = "level"
	FieldFormat = "format"
)
