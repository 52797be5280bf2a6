package graph

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/signalgraph/signalgraph/pkg/common"
)

// Whitespace and line terminators as browsers and editors treat them in
// markup, which is wider than RE2's ASCII \s.
const (
	spaceClass = `\t\n\v\f\r\p{Z}\x{FEFF}`
	lineBreaks = `\n\r\x{2028}\x{2029}`
)

var (
	// [[Name]], shortest match, never spanning a line.
	conceptRe = regexp.MustCompile(`\[\[([^` + lineBreaks + `]*?)\]\]`)
	// #tag at the start of the text or after whitespace.
	tagRe = regexp.MustCompile(`(?:^|[` + spaceClass + `])#([a-zA-Z0-9_-]+)`)
	// "## " at a line start, where a line may also end in \r, U+2028 or
	// U+2029. The whitespace run may cross a line break, in which case the
	// header text is taken from the following line.
	headerRe = regexp.MustCompile(`(?m)(?:^|[\r\x{2028}\x{2029}])##[` + spaceClass + `]+([^` + lineBreaks + `]*)`)
)

func trimMarkup(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
	})
}

// FileID returns the node id of the note at relPath.
func FileID(relPath string) string {
	return "file:" + relPath
}

// ConceptID returns the node id of a wikilinked concept.
func ConceptID(name string) string {
	return "concept:" + name
}

// TagID returns the node id of a tag, without its leading '#'.
func TagID(tag string) string {
	return "tag:" + tag
}

// EventID returns the node id of a second-level header inside a note.
func EventID(relPath, header string) string {
	return "event:" + relPath + "#" + header
}

// Extract applies the markup rules to one note and returns the nodes and
// links scoped to it. The file node is always first, followed by concepts,
// tags and events in text order. Duplicates within the note are kept; the
// builder resolves them.
//
// Extract has no side effects and is safe for concurrent use.
func Extract(text, relPath string) common.Extraction {
	fileID := FileID(relPath)
	out := common.Extraction{
		Nodes: []*common.Node{{
			ID:    fileID,
			Type:  common.NodeTypeFile,
			Label: relPath,
			Path:  relPath,
		}},
	}

	for _, m := range conceptRe.FindAllStringSubmatch(text, -1) {
		concept := trimMarkup(m[1])
		id := ConceptID(concept)
		out.Nodes = append(out.Nodes, &common.Node{
			ID:    id,
			Type:  common.NodeTypeConcept,
			Label: concept,
		})
		out.Links = append(out.Links, common.Link{Source: fileID, Target: id, Type: common.LinkTypeContains})
	}

	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		tag := m[1]
		id := TagID(tag)
		out.Nodes = append(out.Nodes, &common.Node{
			ID:    id,
			Type:  common.NodeTypeTag,
			Label: "#" + tag,
		})
		out.Links = append(out.Links, common.Link{Source: fileID, Target: id, Type: common.LinkTypeTagged})
	}

	for _, m := range headerRe.FindAllStringSubmatch(text, -1) {
		header := trimMarkup(m[1])
		id := EventID(relPath, header)
		out.Nodes = append(out.Nodes, &common.Node{
			ID:     id,
			Type:   common.NodeTypeEvent,
			Label:  header,
			Source: relPath,
		})
		out.Links = append(out.Links, common.Link{Source: fileID, Target: id, Type: common.LinkTypeHeader})
	}

	return out
}
