package loaders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	for _, tc := range []struct {
		name string
		line string
		ok   bool
		want Record
	}{
		{
			name: "perf script with colons",
			line: "  59156.754553:   cpu/mem-loads/pp:     7f92c90f543c",
			ok:   true,
			want: Record{Time: 59156.754553, TimeRaw: "59156.754553", Event: "cpu/mem-loads/pp", Addr: 0x7f92c90f543c, AddrHex: "7f92c90f543c"},
		},
		{
			name: "bare fields",
			line: "1302.847157 cpu/mem-loads/pp 7eb6c026ef00",
			ok:   true,
			want: Record{Time: 1302.847157, TimeRaw: "1302.847157", Event: "cpu/mem-loads/pp", Addr: 0x7eb6c026ef00, AddrHex: "7eb6c026ef00"},
		},
		{
			name: "integer time and tabs",
			line: "12:\tev:\tAbC\n",
			ok:   true,
			want: Record{Time: 12, TimeRaw: "12", Event: "ev", Addr: 0xabc, AddrHex: "AbC"},
		},
		{
			name: "comm and pid prefix",
			line: "train 226012 2584553.881776: cpu/mem-stores/pp: 7fa4c0",
			ok:   true,
			want: Record{Comm: "train", Pid: "226012", Time: 2584553.881776, TimeRaw: "2584553.881776", Event: "cpu/mem-stores/pp", Addr: 0x7fa4c0, AddrHex: "7fa4c0"},
		},
		{name: "garbage", line: "garbage text no numbers"},
		{name: "header", line: "# ========"},
		{name: "empty", line: ""},
		{name: "0x prefix is not bare hex", line: "1.0: ev: 0x1234"},
		{name: "address wider than 64 bits", line: "1.0: ev: 1ffffffffffffffff"},
		{name: "missing address", line: "1.0: ev:"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLine(tc.line)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
