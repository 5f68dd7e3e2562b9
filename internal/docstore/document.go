package docstore

import (
	"strings"
	"time"
)

// GeoPoint is the backend's native latitude/longitude field type.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Document is a point-in-time read of a single stored record. Seq is the
// backend insertion order, used as the tie-break for equal sort keys.
type Document struct {
	Path   string
	Fields Fields
	Seq    int64
}

// ID returns the final path segment, the document id within its collection.
func (d *Document) ID() string {
	i := strings.LastIndexByte(d.Path, '/')
	return d.Path[i+1:]
}

// Collection returns the path of the collection containing the document.
func (d *Document) Collection() string {
	i := strings.LastIndexByte(d.Path, '/')
	if i < 0 {
		return ""
	}
	return d.Path[:i]
}

// Has reports whether the field exists, even as a stored null.
func (d *Document) Has(key string) bool {
	_, ok := d.Fields[key]
	return ok
}

// IsNull reports whether the field exists and is a stored null.
func (d *Document) IsNull(key string) bool {
	v, ok := d.Fields[key]
	return ok && v == nil
}

// String returns the field as a string. The second result is false when the
// field is absent, null, or of another type.
func (d *Document) String(key string) (string, bool) {
	s, ok := d.Fields[key].(string)
	return s, ok
}

// Int returns the field as an int64, accepting the numeric representations
// produced both by in-memory storage and by JSON decoding.
func (d *Document) Int(key string) (int64, bool) {
	switch v := d.Fields[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Time returns the field as a time.Time, accepting a native value or an
// RFC 3339 string as stored by JSON-backed implementations.
func (d *Document) Time(key string) (time.Time, bool) {
	switch v := d.Fields[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// StringSlice returns the field as a slice of strings, accepting a native
// slice or the []any produced by JSON decoding.
func (d *Document) StringSlice(key string) ([]string, bool) {
	switch v := d.Fields[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// GeoPoint returns the field as a GeoPoint, accepting a native value or the
// lat/lon object produced by JSON decoding.
func (d *Document) GeoPoint(key string) (GeoPoint, bool) {
	switch v := d.Fields[key].(type) {
	case GeoPoint:
		return v, true
	case map[string]any:
		lat, okLat := v["lat"].(float64)
		lon, okLon := v["lon"].(float64)
		if !okLat || !okLon {
			return GeoPoint{}, false
		}
		return GeoPoint{Lat: lat, Lon: lon}, true
	default:
		return GeoPoint{}, false
	}
}

// SortValue returns the field value used for query ordering. Times sort
// chronologically, strings and numbers by their natural order.
func (d *Document) SortValue(field string) any {
	return d.Fields[field]
}
