package bankformat

// registry lists formats in priority order; first full signature match wins.
var registry = []Format{
	hdfcFormat,
	iciciFormat,
	sbiFormat,
	axisFormat,
	kotakFormat,
}

// Detect matches a header row against the registry and returns the winning
// format. It never fails: an unrecognized header set gets the generic
// fallback.
func Detect(headers []string) Format {
	for _, f := range registry {
		if f.matches(headers) {
			return f
		}
	}
	return genericFormat
}
