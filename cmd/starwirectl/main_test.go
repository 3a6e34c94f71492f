package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/starwire/internal/protocol/schema"
	"github.com/danmuck/starwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCmdIn(t, nil, args...)
}

func runCmdIn(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, bytes.NewReader(stdin), &out)
	return out.String(), err
}

func TestListPrintsCatalog(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(schema.All()))
	require.Equal(t, "9\tProtocolRequest\tclientBuild", lines[0])
}

func TestDecodeRendersOrderedJSON(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "decode", "--schema", "ChatSent", "--hex", "02 68 69 01")
	require.NoError(t, err)
	require.Equal(t, `{"message":"hi","sendMode":1}`+"\n", out)
}

func TestEncodeFromJSON(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "encode", "-s", "ConnectFailure", "--json", `{"reason":"banned"}`)
	require.NoError(t, err)
	require.Equal(t, "0662616e6e6564\n", out)

	out, err = runCmd(t, "encode", "-s", "GiveItem", "--json",
		`{"name":"ore","count":300,"variantType":7,"description":""}`)
	require.NoError(t, err)
	require.Equal(t, "036f7265822c0700\n", out)
}

func TestEncodeWorldStartFromJSON(t *testing.T) {
	testlog.Start(t)
	in := `{"templateData":{"b":1,"a":"x"},"spawn":{"x":1.5,"y":-2},"respawnInWorld":true,"clientId":3}`
	out, err := runCmd(t, "encode", "-s", "WorldStart", "--json", in)
	require.NoError(t, err)

	back, err := runCmd(t, "decode", "-s", "WorldStart", "--hex", strings.TrimSpace(out))
	require.NoError(t, err)
	require.Contains(t, back, `"templateData":{"a":"x","b":1}`)
	require.Contains(t, back, `"spawn":{"x":1.5,"y":-2}`)
	require.Contains(t, back, `"clientId":3`)
}

func TestEnvelopeAndUnwrap(t *testing.T) {
	testlog.Start(t)
	out, err := runCmd(t, "envelope", "--id", "7", "--hex", "aabb")
	require.NoError(t, err)
	require.Equal(t, "0704aabb\n", out)

	out, err = runCmd(t, "envelope", "--id", "7", "--hex", "aabb", "--compressed")
	require.NoError(t, err)
	require.Equal(t, "0703aabb\n", out)

	out, err = runCmd(t, "envelope", "-s", "ConnectFailure", "--json", `{"reason":"x"}`)
	require.NoError(t, err)
	require.Equal(t, "03040178\n", out)

	out, err = runCmd(t, "unwrap", "--hex", "0704aabb0703ccdd")
	require.NoError(t, err)
	require.Equal(t,
		`[{"id":7,"compressed":false,"length":2,"data":"aabb"},{"id":7,"compressed":true,"length":2,"data":"ccdd"}]`+"\n",
		out)
}

func TestConfigDrivesDefaults(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "starwire.toml")
	out, err := runCmd(t, "init", "--path", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	require.NoError(t, os.WriteFile(path, []byte("default_schema = \"ConnectFailure\"\noutput = \"pretty\"\n"), 0o600))
	out, err = runCmd(t, "decode", "--config", path, "--hex", "026f6b")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"reason\": \"ok\"\n}\n", out)
}

func TestCommandErrors(t *testing.T) {
	testlog.Start(t)
	cases := [][]string{
		{},
		{"bogus"},
		{"decode", "--hex", "00"},
		{"decode", "-s", "Nope", "--hex", "00"},
		{"decode", "-s", "ChatSent", "--hex", "zz"},
		{"encode", "-s", "ChatSent"},
		{"encode", "-s", "ChatSent", "--json", "{"},
		{"envelope", "--id", "300", "--hex", "00"},
		{"envelope", "--hex", "00"},
		{"unwrap", "--hex", "0704aa"},
		{"decode", "--unknown-flag"},
		{"unwrap", "--hex", "0700", "--metrics-addr", "127.0.0.1:0"},
		{"encode", "-s", "WorldStart", "--json", `{"skyData":"not hex"}`},
		{"encode", "-s", "WorldStart", "--json", `{"spawn":{"x":"1"}}`},
	}
	for _, args := range cases {
		_, err := runCmd(t, args...)
		require.Error(t, err, "args=%v", args)
	}
}

func TestByteArrayFieldsRoundTripThroughJSON(t *testing.T) {
	testlog.Start(t)
	in := `{"templateData":{"a":1},"skyData":"0102ff","weatherData":"","spawn":{"x":2,"y":3},"respawnInWorld":true,"worldProperties":null,"clientId":9,"localInterpolation":true}`
	wire, err := runCmd(t, "encode", "-s", "WorldStart", "--json", in)
	require.NoError(t, err)
	wire = strings.TrimSpace(wire)
	require.Contains(t, wire, "030102ff00")

	decoded, err := runCmd(t, "decode", "-s", "WorldStart", "--hex", wire)
	require.NoError(t, err)
	require.Contains(t, decoded, `"skyData":"0102ff"`)

	again, err := runCmd(t, "encode", "-s", "WorldStart", "--json", strings.TrimSpace(decoded))
	require.NoError(t, err)
	require.Equal(t, wire, strings.TrimSpace(again))
}

func TestDecodeRendersWorldChunkLengths(t *testing.T) {
	testlog.Start(t)
	var wire []byte
	wire = append(wire, 0x00)
	wire = append(wire, bytes.Repeat([]byte{0x11}, 16)...)
	wire = append(wire, 0x00, 0x00)
	wire = append(wire, 0x01, 0x01, 'k', 0x00, 0x02, 'v', 'w')
	wire = append(wire, make([]byte, 12)...)
	wire = append(wire, 0x00, 0x00, 0x00)

	out, err := runCmdIn(t, wire, "decode", "-s", "ClientConnect", "--file", "-")
	require.NoError(t, err)
	require.Contains(t, out,
		`"shipData":{"count":1,"entries":[{"index":0,"keyLen":1,"key":"6b","separator":0,"valueLen":2,"value":"7677"}]}`)
}

func TestUnwrapFollowStreamsFrames(t *testing.T) {
	testlog.Start(t)
	stream := []byte{0x07, 0x04, 0xaa, 0xbb, 0x02, 0x01, 0xcc}
	out, err := runCmdIn(t, stream, "unwrap", "--follow")
	require.NoError(t, err)
	require.Equal(t,
		`{"id":7,"compressed":false,"length":2,"data":"aabb"}`+"\n"+
			`{"id":2,"compressed":true,"length":1,"data":"cc"}`+"\n",
		out)

	out, err = runCmdIn(t, stream, "unwrap", "--follow", "--file", "-", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = runCmdIn(t, append(stream, 0x01, 0x08), "unwrap", "--follow")
	require.Error(t, err)
	require.Contains(t, err.Error(), "frame 2")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}
