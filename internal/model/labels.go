package model

import (
	"strings"
	"unicode"
)

// labelAcronyms stay upper case in generated labels.
var labelAcronyms = map[string]string{
	"api":  "API",
	"crs":  "CRS",
	"csv":  "CSV",
	"epsg": "EPSG",
	"fme":  "FME",
	"gml":  "GML",
	"id":   "ID",
	"json": "JSON",
	"kml":  "KML",
	"pdf":  "PDF",
	"url":  "URL",
	"xml":  "XML",
}

// DefaultLabeler turns a published parameter name into a label for fields
// without a description. Words are split on underscores, dashes, dots,
// spaces and camelCase or digit boundaries, so "__remote_dataset_url__"
// becomes "Remote Dataset URL" and "maxRows" becomes "Max rows". FME
// placeholders such as "$(SourceDataset)" lose their wrapper.
func DefaultLabeler(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "$(") && strings.HasSuffix(name, ")") {
		name = name[2 : len(name)-1]
	}

	var segments []string
	for _, word := range strings.FieldsFunc(name, isLabelSeparator) {
		segments = append(segments, labelWord(splitCamel(word)))
	}
	return strings.Join(segments, " ")
}

func isLabelSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// labelWord capitalises the first part of a separator-delimited word and
// lower-cases the parts its camelCase boundaries produced.
func labelWord(parts []string) string {
	for i, part := range parts {
		lower := strings.ToLower(part)
		switch {
		case labelAcronyms[lower] != "":
			parts[i] = labelAcronyms[lower]
		case i == 0:
			parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
		default:
			parts[i] = lower
		}
	}
	return strings.Join(parts, " ")
}

func splitCamel(word string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(word); i++ {
		if camelBoundary(rune(word[i-1]), rune(word[i])) {
			parts = append(parts, word[start:i])
			start = i
		}
	}
	return append(parts, word[start:])
}

func camelBoundary(prev, r rune) bool {
	switch {
	case isLower(prev) && isUpper(r):
		return true
	case isLetter(prev) && isDigit(r), isDigit(prev) && isLetter(r):
		return true
	}
	return false
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
