package loaders

import (
	"regexp"
	"strconv"
)

// Accepts `[<comm> <pid>] <time>[:] <event>[:] <addr_hex>` with any amount of
// whitespace between fields.
var lineRe = regexp.MustCompile(
	`^\s*(?:(\S+)\s+([0-9]+)\s+)?([0-9]+(?:\.[0-9]+)?)\s*:?\s+(\S+?)\s*:?\s+([0-9a-fA-F]+)\s*$`,
)

// Record is one parsed trace line, before any filtering.
type Record struct {
	Comm string
	Pid  string
	Time float64
	// TimeRaw is the time token as it appeared in the trace.
	TimeRaw string
	Event   string
	Addr    uint64
	// AddrHex is the address token as it appeared in the trace.
	AddrHex string
}

// ParseLine extracts a record from a trace line. Lines that do not have the
// expected shape report false; they are expected (headers, comments) and
// are not errors.
func ParseLine(line string) (Record, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	t, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Record{}, false
	}
	addr, err := strconv.ParseUint(m[5], 16, 64)
	if err != nil {
		// more than 64 bits of address
		return Record{}, false
	}
	return Record{
		Comm:    m[1],
		Pid:     m[2],
		Time:    t,
		TimeRaw: m[3],
		Event:   m[4],
		Addr:    addr,
		AddrHex: m[5],
	}, true
}
