package dom

import "strings"

// XMLNamespace is the namespace bound to the reserved "xml" prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// QName is a namespace-qualified name.
type QName struct {
	Space string // namespace URI, empty for no namespace
	Local string
}

// PCDATA stands for character data in validator sequences.
var PCDATA = QName{Local: "#PCDATA"}

// ParseQName parses Clark notation ("{uri}local") or a bare local name.
func ParseQName(s string) QName {
	if strings.HasPrefix(s, "{") {
		if i := strings.Index(s, "}"); i > 0 {
			return QName{Space: s[1:i], Local: s[i+1:]}
		}
	}
	return QName{Local: s}
}

// String returns the name in Clark notation.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// IsZero reports whether the name is empty.
func (q QName) IsZero() bool {
	return q.Local == ""
}

// Less orders names by namespace, then local name.
func (q QName) Less(other QName) bool {
	if q.Space != other.Space {
		return q.Space < other.Space
	}
	return q.Local < other.Local
}

// isXMLName reports whether s is usable as an element name or PI target.
func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == ':' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r > 0x7f:
		case i > 0 && (r == '-' || r == '.' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
