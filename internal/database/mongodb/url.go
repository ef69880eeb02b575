package mongodb

import (
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/docbench/docbench/pkg/binding"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// Configuration properties recognized by the binding.
const (
	urlProperty      = "mongodb.url"
	databaseProperty = "mongodb.database"

	// Legacy properties folded into the URL before parsing. URL options
	// always win over these.
	writeConcernProperty   = "mongodb.writeConcern"
	readPreferenceProperty = "mongodb.readPreference"
	maxConnectionsProperty = "mongodb.maxconnections"

	defaultURL      = "mongodb://localhost:27017/ycsb?w=1"
	defaultDatabase = "ycsb"

	// adminDatabase is MongoDB's administrative database. A URL pointing at
	// it is treated as host configuration only, not as a workload target.
	adminDatabase = "admin"

	urlScheme = "mongodb://"
)

// clientConfig is the parsed, immutable connection configuration the first
// Init publishes alongside the shared client.
type clientConfig struct {
	url          string
	hosts        string
	database     string
	readPref     *readpref.ReadPref
	writeConcern *writeconcern.WriteConcern
}

// parseConfig resolves the binding properties into a client configuration.
// The URL is the standard connection format,
// http://docs.mongodb.org/manual/reference/connection-string/, with legacy
// property overrides folded in first.
func parseConfig(props binding.Properties) (*clientConfig, error) {
	defaulted := !props.Has(urlProperty)
	url := props.Get(urlProperty, defaultURL)
	url = updateURL(url, props)

	if !strings.HasPrefix(url, urlScheme) {
		return nil, binding.NewConfigurationError(Name, urlProperty,
			"URL '"+url+"' must be of the form 'mongodb://<host1>:<port1>,<host2>:<port2>/database?options'")
	}

	rest := strings.TrimPrefix(url, urlScheme)

	var query string
	if i := strings.Index(rest, "?"); i >= 0 {
		query = rest[i+1:]
		rest = rest[:i]
	}

	hosts := rest
	var uriDB string
	if i := strings.Index(rest, "/"); i >= 0 {
		hosts = rest[:i]
		uriDB = rest[i+1:]
	}

	options, err := neturl.ParseQuery(query)
	if err != nil {
		return nil, binding.NewConfigurationError(Name, urlProperty,
			"malformed URL options: "+err.Error())
	}

	// Prefer the database embedded in the URL unless the URL was defaulted
	// or it names the administrative database.
	var database string
	if !defaulted && uriDB != "" && uriDB != adminDatabase {
		database = uriDB
	} else {
		database = props.Get(databaseProperty, defaultDatabase)
	}
	if database == "" {
		return nil, binding.NewConfigurationError(Name, databaseProperty,
			"must provide a database name with the URI or the "+databaseProperty+" property")
	}

	readPref, err := parseReadPreference(options.Get("readPreference"))
	if err != nil {
		return nil, err
	}

	writeConcern, err := parseWriteConcern(options.Get("w"), options.Get("journal"))
	if err != nil {
		return nil, err
	}

	return &clientConfig{
		url:          url,
		hosts:        hosts,
		database:     database,
		readPref:     readPref,
		writeConcern: writeConcern,
	}, nil
}

// updateURL folds legacy option properties into the URL as query options.
// Options already present in the URL are left alone.
func updateURL(url string, props binding.Properties) string {
	if v := props.Get(maxConnectionsProperty, ""); v != "" && !hasOption(url, "maxPoolSize") {
		url = appendOption(url, "maxPoolSize", v)
	}
	if v := props.Get(readPreferenceProperty, ""); v != "" && !hasOption(url, "readPreference") {
		url = appendOption(url, "readPreference", v)
	}
	if v := props.Get(writeConcernProperty, ""); v != "" && !hasOption(url, "w") {
		url = appendWriteConcern(url, v)
	}
	return url
}

// appendWriteConcern translates the legacy named write-concern levels onto
// URL options.
func appendWriteConcern(url, level string) string {
	switch strings.ToLower(level) {
	case "errors_ignored", "unacknowledged":
		return appendOption(url, "w", "0")
	case "acknowledged":
		return appendOption(url, "w", "1")
	case "journaled":
		url = appendOption(url, "w", "1")
		if !hasOption(url, "journal") {
			url = appendOption(url, "journal", "true")
		}
		return url
	case "replica_acknowledged":
		return appendOption(url, "w", "2")
	case "majority":
		return appendOption(url, "w", "majority")
	default:
		// Unknown levels pass through verbatim and fail URL parsing later.
		return appendOption(url, "w", level)
	}
}

func hasOption(url, key string) bool {
	i := strings.Index(url, "?")
	if i < 0 {
		return false
	}
	for _, option := range strings.Split(url[i+1:], "&") {
		if strings.HasPrefix(option, key+"=") {
			return true
		}
	}
	return false
}

func appendOption(url, key, value string) string {
	separator := "?"
	if strings.Contains(url, "?") {
		separator = "&"
	}
	return url + separator + key + "=" + value
}

// parseReadPreference maps the readPreference URL option onto a driver read
// preference. An absent option means primary.
func parseReadPreference(mode string) (*readpref.ReadPref, error) {
	switch strings.ToLower(mode) {
	case "", "primary":
		return readpref.Primary(), nil
	case "primarypreferred":
		return readpref.PrimaryPreferred(), nil
	case "secondary":
		return readpref.Secondary(), nil
	case "secondarypreferred":
		return readpref.SecondaryPreferred(), nil
	case "nearest":
		return readpref.Nearest(), nil
	default:
		return nil, binding.NewConfigurationError(Name, "readPreference",
			"unknown read preference '"+mode+"'")
	}
}

// parseWriteConcern maps the w and journal URL options onto a driver write
// concern. Both absent means the driver default.
func parseWriteConcern(w, journal string) (*writeconcern.WriteConcern, error) {
	if w == "" && journal == "" {
		return nil, nil
	}

	concern := &writeconcern.WriteConcern{}

	switch {
	case w == "":
		// Journal-only concern.
	case strings.EqualFold(w, "majority"):
		concern.W = "majority"
	default:
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, binding.NewConfigurationError(Name, "w",
				"write concern must be an integer or 'majority', got '"+w+"'")
		}
		concern.W = n
	}

	if journal != "" {
		j, err := strconv.ParseBool(journal)
		if err != nil {
			return nil, binding.NewConfigurationError(Name, "journal",
				"journal must be a boolean, got '"+journal+"'")
		}
		concern.Journal = &j
	}

	return concern, nil
}
