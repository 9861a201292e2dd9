package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// LocationKind tags which shape a Location holds.
type LocationKind string

const (
	AddressLocation    LocationKind = "address"
	CoordinateLocation LocationKind = "coordinates"
)

// UnknownLocation is the display string for a location with neither
// coordinates nor an address.
const UnknownLocation = "Unknown location"

var ErrInvalidLocation = errors.New("invalid location")

// Location is where an issue was reported. A coordinates location carries
// Lat/Lng and optionally the area name in Address; an address location only
// carries free text.
type Location struct {
	Kind    LocationKind `bson:"type" json:"type"`
	Lat     *float64     `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     *float64     `bson:"lng,omitempty" json:"lng,omitempty"`
	Address string       `bson:"address,omitempty" json:"address,omitempty"`
}

// locationDoc has Location's fields without its codec methods.
type locationDoc Location

func NewAddressLocation(address string) Location {
	return Location{Kind: AddressLocation, Address: address}
}

func NewCoordinateLocation(lat, lng float64, address string) Location {
	return Location{Kind: CoordinateLocation, Lat: &lat, Lng: &lng, Address: address}
}

// Coordinates returns the location's lat/lng when both are present and finite.
func (l Location) Coordinates() (lat, lng float64, ok bool) {
	if l.Lat == nil || l.Lng == nil || !isFinite(*l.Lat) || !isFinite(*l.Lng) {
		return 0, 0, false
	}
	return *l.Lat, *l.Lng, true
}

func (l Location) hasAddress() bool {
	return strings.TrimSpace(l.Address) != ""
}

// Validate checks the location before it is written to storage.
func (l Location) Validate() error {
	switch l.Kind {
	case CoordinateLocation:
		lat, lng, ok := l.Coordinates()
		if !ok {
			return fmt.Errorf("%w: coordinates require numeric lat and lng", ErrInvalidLocation)
		}
		if lat < -90 || lat > 90 {
			return fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, lat)
		}
		if lng < -180 || lng > 180 {
			return fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, lng)
		}
	case AddressLocation:
		if !l.hasAddress() {
			return fmt.Errorf("%w: address is empty", ErrInvalidLocation)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidLocation, l.Kind)
	}
	return nil
}

// Display renders the canonical display form:
//
//	"{address} ({lat}, {lng})", "{lat}, {lng}", the address verbatim,
//	or UnknownLocation.
//
// An address that is itself a serialized coordinate pair is ignored when
// coordinates are present.
func (l Location) Display() string {
	lat, lng, hasCoords := l.Coordinates()
	hasAddress := l.hasAddress()
	if hasCoords && hasAddress {
		if _, _, isPair := parseCoordinatePair(l.Address); isPair {
			hasAddress = false
		}
	}

	switch {
	case hasCoords && hasAddress:
		return fmt.Sprintf("%s (%s)", strings.TrimSpace(l.Address), formatPair(lat, lng))
	case hasCoords:
		return formatPair(lat, lng)
	case hasAddress:
		return FormatLocationString(l.Address)
	}
	return UnknownLocation
}

func (l Location) String() string { return l.Display() }

// ParseLocationInput turns user-entered text into a Location. Accepted forms
// are "<address> (<lat>, <lng>)", a bare "<lat>, <lng>", or any other text,
// which is kept verbatim as an address.
func ParseLocationInput(raw string) Location {
	if address, lat, lng, ok := parseParenthesized(raw); ok {
		return NewCoordinateLocation(lat, lng, address)
	}
	if strings.Contains(raw, ",") {
		if lat, lng, ok := parseCoordinatePair(raw); ok {
			return NewCoordinateLocation(lat, lng, "")
		}
	}
	return NewAddressLocation(raw)
}

// FormatLocationString formats a location stored as a plain string. A bare
// coordinate pair is re-rendered to four decimals, anything else is returned
// unchanged.
func FormatLocationString(s string) string {
	if lat, lng, ok := parseCoordinatePair(s); ok {
		return formatPair(lat, lng)
	}
	return s
}

// ExtractCoordinates pulls a lat/lng pair out of a display string, preferring
// the parenthesized group.
func ExtractCoordinates(display string) (lat, lng float64, ok bool) {
	if _, lat, lng, ok := parseParenthesized(display); ok {
		return lat, lng, true
	}
	if strings.Contains(display, ",") {
		return parseCoordinatePair(display)
	}
	return 0, 0, false
}

func parseParenthesized(s string) (address string, lat, lng float64, ok bool) {
	open := strings.Index(s, "(")
	if open < 0 {
		return "", 0, 0, false
	}
	rest := s[open+1:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return "", 0, 0, false
	}
	lat, lng, ok = parseCoordinatePair(rest[:end])
	if !ok {
		return "", 0, 0, false
	}
	return strings.TrimSpace(s[:open]), lat, lng, true
}

func parseCoordinatePair(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || !isFinite(lat) {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || !isFinite(lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func formatPair(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (l *Location) normalizeKind() {
	if l.Kind != "" {
		return
	}
	if _, _, ok := l.Coordinates(); ok {
		l.Kind = CoordinateLocation
	} else if l.hasAddress() {
		l.Kind = AddressLocation
	}
}

// UnmarshalJSON accepts either a location object or free text, which is run
// through ParseLocationInput.
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Location{}
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = ParseLocationInput(raw)
		return nil
	}

	var doc locationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*l = Location(doc)
	l.normalizeKind()
	return nil
}

// UnmarshalBSONValue decodes both the structured document and the legacy
// plain-string form. A legacy string is kept verbatim as an address.
func (l *Location) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return errors.New("models: malformed location string")
		}
		*l = NewAddressLocation(s)
		return nil
	case bsontype.EmbeddedDocument:
		var doc locationDoc
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*l = Location(doc)
		l.normalizeKind()
		return nil
	case bsontype.Null, bsontype.Undefined:
		*l = Location{}
		return nil
	}
	return fmt.Errorf("models: cannot decode location from bson %s", t)
}
