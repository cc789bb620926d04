package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
)

// Tag is a two-letter UniProt header key such as OS or GN.
type Tag string

const (
	TagOrganismName       Tag = "OS"
	TagOrganismIdentifier Tag = "OX"
	TagGeneName           Tag = "GN"
	TagProteinExistence   Tag = "PE"
	TagSequenceVersion    Tag = "SV"
)

// Tags lists the recognized tags in the order they are written.
var Tags = []Tag{
	TagOrganismName,
	TagOrganismIdentifier,
	TagGeneName,
	TagProteinExistence,
	TagSequenceVersion,
}

// tagRegex finds a recognized tag at the start of a whitespace-delimited word.
var tagRegex = regexp.MustCompile(`(?:^|\s)(OS|OX|GN|PE|SV)=`)

// Header holds the fields extracted from one header line.
type Header struct {
	DB                 pgtype.Text
	UniqueIdentifier   pgtype.Text
	EntryName          pgtype.Text
	ProteinName        pgtype.Text
	OrganismName       pgtype.Text
	OrganismIdentifier pgtype.Int8
	GeneName           pgtype.Text
	ProteinExistence   pgtype.Int4
	SequenceVersion    pgtype.Int4

	// PrefixOK is false when the line has no db|id|name prefix. In that
	// case only ProteinName is set, to the whole trimmed line.
	PrefixOK bool

	// Warnings lists numeric tags that could not be parsed.
	Warnings []Warning
}

// ExtractHeader parses a header line (without the leading '>').
//
// The expected grammar is
//
//	db|unique_identifier|entry_name description OS=.. OX=.. GN=.. PE=.. SV=..
//
// Tags are optional and may come in any order; each value runs up to the
// next recognized tag or the end of the line. ExtractHeader never fails:
// missing or malformed parts come back absent.
func ExtractHeader(line string) Header {
	line = strings.TrimSpace(line)

	var h Header
	prefix, rest := cutFirstField(line)

	parts := strings.SplitN(prefix, "|", 3)
	if len(parts) < 3 {
		h.ProteinName = textValue(line)
		return h
	}

	h.PrefixOK = true
	h.DB = textValue(parts[0])
	h.UniqueIdentifier = textValue(parts[1])
	h.EntryName = textValue(parts[2])

	description, values := scanTags(rest)
	h.ProteinName = textValue(description)
	h.OrganismName = textValue(values[TagOrganismName])
	h.GeneName = textValue(values[TagGeneName])

	var w *Warning
	if h.OrganismIdentifier, w = int8Value(ColOrganismIdentifier, TagOrganismIdentifier, values); w != nil {
		h.Warnings = append(h.Warnings, *w)
	}
	if h.ProteinExistence, w = int4Value(ColProteinExistence, TagProteinExistence, values); w != nil {
		h.Warnings = append(h.Warnings, *w)
	}
	if h.SequenceVersion, w = int4Value(ColSequenceVersion, TagSequenceVersion, values); w != nil {
		h.Warnings = append(h.Warnings, *w)
	}

	return h
}

// cutFirstField splits s at its first whitespace character. rest keeps the
// separator so a tag directly after the prefix is still word-initial.
func cutFirstField(s string) (first, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// scanTags splits the text after the prefix into the free description and
// the tagged values. A repeated tag keeps its first value.
func scanTags(s string) (description string, values map[Tag]string) {
	values = make(map[Tag]string, len(Tags))

	locs := tagRegex.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return s, values
	}

	description = s[:locs[0][0]]
	for i, loc := range locs {
		tag := Tag(s[loc[2]:loc[3]])
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if _, seen := values[tag]; seen {
			continue
		}
		values[tag] = strings.TrimSpace(s[loc[1]:end])
	}
	return description, values
}

// textValue returns s trimmed, or absent when nothing is left.
func textValue(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func int8Value(field string, tag Tag, values map[Tag]string) (pgtype.Int8, *Warning) {
	raw, ok := values[tag]
	if !ok || raw == "" {
		return pgtype.Int8{Valid: false}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return pgtype.Int8{Valid: false}, fieldParseWarning(field, tag, raw)
	}
	return pgtype.Int8{Int64: n, Valid: true}, nil
}

func int4Value(field string, tag Tag, values map[Tag]string) (pgtype.Int4, *Warning) {
	raw, ok := values[tag]
	if !ok || raw == "" {
		return pgtype.Int4{Valid: false}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return pgtype.Int4{Valid: false}, fieldParseWarning(field, tag, raw)
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}, nil
}

func fieldParseWarning(field string, tag Tag, raw string) *Warning {
	w := newWarning(WarnFieldParse, field, raw, fmt.Sprintf("%s=%q is not an integer", tag, raw))
	return &w
}
