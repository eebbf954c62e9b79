package references

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EmbeddedScheme prefixes the IDs of documents served from an embedded file system.
const EmbeddedScheme = "embedded:"

// classpathScheme is accepted as a synonym of EmbeddedScheme in reference URIs.
const classpathScheme = "classpath:"

// LocationType represents the kind of location a reference string addresses
type LocationType int

const (
	LocationUnknown LocationType = iota
	LocationURL
	LocationFilePath
	LocationEmbedded
)

// Location holds the result of classifying a reference string
type Location struct {
	Type      LocationType
	Original  string
	ParsedURL *url.URL
}

// Classify determines whether a string is a URL, an embedded resource or a file path.
func Classify(ref string) (*Location, error) {
	if ref == "" {
		return nil, errors.New("empty reference")
	}

	if strings.HasPrefix(ref, EmbeddedScheme) || strings.HasPrefix(ref, classpathScheme) {
		return &Location{Type: LocationEmbedded, Original: ref}, nil
	}

	// Windows drive letters parse as a one letter scheme
	if len(ref) >= 2 && ref[1] == ':' && (len(ref) == 2 || ref[2] == '\\' || ref[2] == '/') {
		return &Location{Type: LocationFilePath, Original: ref}, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %w", err)
	}

	if u.Scheme != "" {
		if strings.EqualFold(u.Scheme, "file") {
			return &Location{Type: LocationFilePath, Original: u.Path}, nil
		}
		return &Location{Type: LocationURL, Original: ref, ParsedURL: u}, nil
	}

	return &Location{Type: LocationFilePath, Original: ref}, nil
}

// JoinWith resolves relative against this location and returns the joined reference.
func (l *Location) JoinWith(relative string) (string, error) {
	if relative == "" {
		return l.Original, nil
	}

	switch l.Type {
	case LocationURL:
		rel, err := url.Parse(relative)
		if err != nil {
			return "", fmt.Errorf("invalid relative URL: %w", err)
		}
		return l.ParsedURL.ResolveReference(rel).String(), nil
	case LocationEmbedded:
		base := embeddedPath(l.Original)
		return EmbeddedScheme + path.Join(path.Dir(base), relative), nil
	default:
		if path.IsAbs(relative) {
			return relative, nil
		}
		return path.Join(path.Dir(l.Original), relative), nil
	}
}

// Canonicalize turns a raw reference string, resolved against the referencing
// document, into a DocumentID. Different spellings of the same target yield the same ID.
// Results are cached process wide.
func Canonicalize(raw string, base DocumentID) (DocumentID, error) {
	return globalRefCache.Resolve(raw, base)
}

func canonicalizeUncached(raw string, base DocumentID) (DocumentID, error) {
	raw = norm.NFC.String(strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/")))
	if raw == "" {
		return "", errors.New("empty reference")
	}

	target, err := Classify(raw)
	if err != nil {
		return "", err
	}

	joined := target.Original
	if base != "" && target.Type == LocationFilePath && !isAbsolutePath(target.Original) {
		baseLoc, err := Classify(string(base))
		if err != nil {
			return "", fmt.Errorf("invalid base %s: %w", base, err)
		}
		joined, err = baseLoc.JoinWith(target.Original)
		if err != nil {
			return "", err
		}
	}

	loc, err := Classify(joined)
	if err != nil {
		return "", err
	}

	switch loc.Type {
	case LocationURL:
		return DocumentID(normalizeURL(loc.ParsedURL)), nil
	case LocationEmbedded:
		return DocumentID(EmbeddedScheme + cleanPath(embeddedPath(loc.Original))), nil
	default:
		return DocumentID(cleanPath(loc.Original)), nil
	}
}

func normalizeURL(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	c.RawFragment = ""
	if c.Path != "" {
		c.Path = path.Clean(c.Path)
		c.RawPath = ""
	}
	return c.String()
}

func embeddedPath(ref string) string {
	ref = strings.TrimPrefix(ref, EmbeddedScheme)
	ref = strings.TrimPrefix(ref, classpathScheme)
	return strings.TrimPrefix(ref, "/")
}

func cleanPath(p string) string {
	cleaned := path.Clean(p)
	return strings.TrimPrefix(cleaned, "./")
}

func isAbsolutePath(p string) bool {
	return path.IsAbs(p) || (len(p) >= 3 && p[1] == ':' && p[2] == '/')
}
