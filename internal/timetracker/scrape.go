package timetracker

import (
	"html"
	"regexp"
	"strings"
)

// HiddenFieldPrefix is the name prefix ASP.NET uses for its state and
// anti-forgery inputs (__VIEWSTATE, __EVENTVALIDATION, ...).
const HiddenFieldPrefix = "__"

// Secrets is the set of hidden fields taken from the most recent response.
type Secrets map[string]string

// OptionMap maps the visible label of a select option to its value.
type OptionMap map[string]string

var (
	inputRe  = regexp.MustCompile(`(?is)<input\b[^>]*?/>`)
	nameRe   = regexp.MustCompile(`(?is)\sname="([^"\s]*)"`)
	valueRe  = regexp.MustCompile(`(?is)\svalue="([^"]*)"`)
	selectRe = regexp.MustCompile(`(?is)<select\b[^>]*?\sname="([^"]*)"[^>]*>(.*?)</select\s*>`)
	optionRe = regexp.MustCompile(`(?is)<option\b[^>]*?\svalue="([^"]*)"[^>]*>(.*?)</option\s*>`)
	tableRe  = regexp.MustCompile(`(?is)<table\b[^>]*>(.*?)</table\s*>`)
	rowRe    = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr\s*>`)
	cellRe   = regexp.MustCompile(`(?is)<t[dh]\b[^>]*>(.*?)</t[dh]\s*>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// ExtractHiddenFields returns the name/value pairs of every self-closing
// input whose name starts with HiddenFieldPrefix. Inputs without a name are
// skipped and a missing value is read as "".
func ExtractHiddenFields(markup string) Secrets {
	fields := Secrets{}
	for _, input := range inputRe.FindAllString(markup, -1) {
		m := nameRe.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		name := m[1]
		if !strings.HasPrefix(name, HiddenFieldPrefix) {
			continue
		}
		value := ""
		if v := valueRe.FindStringSubmatch(input); v != nil {
			value = html.UnescapeString(v[1])
		}
		fields[name] = value
	}
	return fields
}

// ExtractSelectOptions returns the options of the select named name, keyed
// by label. When a label repeats, the later option wins. A missing select
// yields an empty map.
func ExtractSelectOptions(markup, name string) OptionMap {
	selects := map[string]OptionMap{}
	for _, m := range selectRe.FindAllStringSubmatch(markup, -1) {
		options := OptionMap{}
		for _, o := range optionRe.FindAllStringSubmatch(m[2], -1) {
			options[cellText(o[2])] = html.UnescapeString(o[1])
		}
		selects[m[1]] = options
	}
	if options, ok := selects[name]; ok {
		return options
	}
	return OptionMap{}
}

// ExtractTableRows returns the cell text of every row of the first table in
// markup, header and footer rows included. It returns nil when there is no
// table.
func ExtractTableRows(markup string) [][]string {
	t := tableRe.FindStringSubmatch(markup)
	if t == nil {
		return nil
	}
	var rows [][]string
	for _, r := range rowRe.FindAllStringSubmatch(t[1], -1) {
		cells := []string{}
		for _, c := range cellRe.FindAllStringSubmatch(r[1], -1) {
			cells = append(cells, cellText(c[1]))
		}
		rows = append(rows, cells)
	}
	return rows
}

// cellText drops nested tags, decodes entities and trims whitespace.
func cellText(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
