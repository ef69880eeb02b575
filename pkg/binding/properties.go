package binding

import "strconv"

// Properties is the flat configuration surface handed to a binding at Init.
// Keys are binding-specific (e.g. "mongodb.url"); values are strings the
// binding parses itself.
type Properties map[string]string

// Get returns the value for key, or def when the key is absent. An
// explicitly set empty value is returned as-is.
func (p Properties) Get(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present, regardless of value.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// GetInt returns the value for key parsed as an int, or def when the key is
// absent or not a valid integer.
func (p Properties) GetInt(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns the value for key parsed as a float64, or def when the
// key is absent or not a valid number.
func (p Properties) GetFloat(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
