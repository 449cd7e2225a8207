// Package xmlio reads XML text into documents and writes documents back as
// XML text.
//
// Read keeps elements, attributes, namespace declarations, character data,
// comments and processing instructions. The XML declaration and DOCTYPE
// directives are dropped. Write emits namespace declarations where they were
// made and resolves element and attribute names against them.
package xmlio
