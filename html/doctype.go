package html

import (
	"strings"

	"github.com/chrisuehlinger/domarena/tree"
)

// quirkyPublicPrefixes are public identifier prefixes that force quirks mode.
var quirkyPublicPrefixes = []string{
	"+//silmaril//dtd html pro v0r11 19970101//",
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
	"-//as//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0 level 1//",
	"-//ietf//dtd html 2.0 level 2//",
	"-//ietf//dtd html 2.0 strict level 1//",
	"-//ietf//dtd html 2.0 strict level 2//",
	"-//ietf//dtd html 2.0 strict//",
	"-//ietf//dtd html 2.0//",
	"-//ietf//dtd html 2.1e//",
	"-//ietf//dtd html 3.0//",
	"-//ietf//dtd html 3.2 final//",
	"-//ietf//dtd html 3.2//",
	"-//ietf//dtd html 3//",
	"-//ietf//dtd html level 0//",
	"-//ietf//dtd html level 1//",
	"-//ietf//dtd html level 2//",
	"-//ietf//dtd html level 3//",
	"-//ietf//dtd html strict level 0//",
	"-//ietf//dtd html strict level 1//",
	"-//ietf//dtd html strict level 2//",
	"-//ietf//dtd html strict level 3//",
	"-//ietf//dtd html strict//",
	"-//ietf//dtd html//",
	"-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer 2.0 html strict//",
	"-//microsoft//dtd internet explorer 2.0 html//",
	"-//microsoft//dtd internet explorer 2.0 tables//",
	"-//microsoft//dtd internet explorer 3.0 html strict//",
	"-//microsoft//dtd internet explorer 3.0 html//",
	"-//microsoft//dtd internet explorer 3.0 tables//",
	"-//netscape comm. corp.//dtd html//",
	"-//netscape comm. corp.//dtd strict html//",
	"-//o'reilly and associates//dtd html 2.0//",
	"-//o'reilly and associates//dtd html extended 1.0//",
	"-//o'reilly and associates//dtd html extended relaxed 1.0//",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//sun microsystems corp.//dtd hotjava html//",
	"-//sun microsystems corp.//dtd hotjava strict html//",
	"-//w3c//dtd html 3 1995-03-24//",
	"-//w3c//dtd html 3.2 draft//",
	"-//w3c//dtd html 3.2 final//",
	"-//w3c//dtd html 3.2//",
	"-//w3c//dtd html 3.2s draft//",
	"-//w3c//dtd html 4.0 frameset//",
	"-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental 19960712//",
	"-//w3c//dtd html experimental 970421//",
	"-//w3c//dtd w3 html//",
	"-//w3o//dtd w3 html 3.0//",
	"-//webtechs//dtd mozilla html 2.0//",
	"-//webtechs//dtd mozilla html//",
}

var quirkyPublicIDs = []string{
	"-//w3o//dtd w3 html strict 3.0//en//",
	"-/w3c/dtd html 4.0 transitional/en",
	"html",
}

const quirkySystemID = "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd"

// html401Prefixes force quirks without a system identifier and limited
// quirks with one.
var html401Prefixes = []string{
	"-//w3c//dtd html 4.01 frameset//",
	"-//w3c//dtd html 4.01 transitional//",
}

var limitedQuirkyPrefixes = []string{
	"-//w3c//dtd xhtml 1.0 frameset//",
	"-//w3c//dtd xhtml 1.0 transitional//",
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// quirksMode derives the document compatibility mode from a doctype.
// hasSystem distinguishes a missing system identifier from an empty one.
func quirksMode(name, publicID, systemID string, hasSystem, forceQuirks bool) tree.QuirksMode {
	if forceQuirks || name != "html" {
		return tree.Quirks
	}
	public := strings.ToLower(publicID)
	system := strings.ToLower(systemID)
	switch {
	case hasAnyPrefix(public, quirkyPublicPrefixes):
		return tree.Quirks
	case hasAnyString(public, quirkyPublicIDs):
		return tree.Quirks
	case system == quirkySystemID:
		return tree.Quirks
	case !hasSystem && hasAnyPrefix(public, html401Prefixes):
		return tree.Quirks
	case hasAnyPrefix(public, limitedQuirkyPrefixes):
		return tree.LimitedQuirks
	case hasSystem && hasAnyPrefix(public, html401Prefixes):
		return tree.LimitedQuirks
	}
	return tree.NoQuirks
}

func hasAnyString(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// doctype is a parsed DOCTYPE token.
type doctype struct {
	name        string
	publicID    string
	systemID    string
	hasSystem   bool
	forceQuirks bool
}

func (d doctype) quirks() tree.QuirksMode {
	return quirksMode(d.name, d.publicID, d.systemID, d.hasSystem, d.forceQuirks)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}

// parseDoctype parses the contents of a DOCTYPE token, such as
// `html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"`.
func parseDoctype(s string) doctype {
	var d doctype
	s = strings.TrimLeftFunc(s, isSpace)
	end := strings.IndexFunc(s, isSpace)
	if end < 0 {
		end = len(s)
	}
	d.name = strings.ToLower(s[:end])
	if d.name == "" {
		d.forceQuirks = true
		return d
	}
	rest := strings.TrimLeftFunc(s[end:], isSpace)
	if rest == "" {
		return d
	}
	if len(rest) < 6 {
		d.forceQuirks = true
		return d
	}
	key := strings.ToLower(rest[:6])
	rest = rest[6:]
	if key != "public" && key != "system" {
		d.forceQuirks = true
		return d
	}
	explicit := true
	for key != "" {
		rest = strings.TrimLeftFunc(rest, isSpace)
		if rest == "" {
			if explicit {
				d.forceQuirks = true
			}
			break
		}
		quote := rest[0]
		if quote != '"' && quote != '\'' {
			d.forceQuirks = true
			break
		}
		rest = rest[1:]
		var id string
		if i := strings.IndexByte(rest, quote); i >= 0 {
			id, rest = rest[:i], rest[i+1:]
		} else {
			id, rest = rest, ""
			d.forceQuirks = true
		}
		if key == "public" {
			d.publicID = id
			key, explicit = "system", false
		} else {
			d.systemID = id
			d.hasSystem = true
			key = ""
		}
	}
	if strings.TrimLeftFunc(rest, isSpace) != "" {
		d.forceQuirks = true
	}
	return d
}
