package schema

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/danmuck/starwire/internal/protocol/codec"
	"github.com/danmuck/starwire/internal/testutil/testlog"
)

func TestConnectFailureFixture(t *testing.T) {
	testlog.Start(t)
	wire, err := ConnectFailure.Encode(map[string]any{"reason": "banned"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x06, 'b', 'a', 'n', 'n', 'e', 'd'}
	if !bytes.Equal(wire, want) {
		t.Fatalf("got=%x want=%x", wire, want)
	}
	rec, err := Decode("ConnectFailure", wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Len() != 1 {
		t.Fatalf("expected 1 field, got %d", rec.Len())
	}
	if reason, _ := rec.Get("reason"); reason != "banned" {
		t.Fatalf("reason: got %v", reason)
	}
}

func TestRoundTripPerMessage(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		msg Message
		in  *codec.Record
	}{
		{ProtocolRequest, codec.RecordOf("clientBuild", uint32(643))},
		{ProtocolResponse, codec.RecordOf("serverResponse", uint8(1))},
		{ConnectFailure, codec.RecordOf("reason", "server full")},
		{ClientDisconnectRequest, codec.RecordOf("request", uint8(0))},
		{ServerDisconnect, codec.RecordOf("reason", "shutdown")},
		{ChatReceived, codec.RecordOf(
			"mode", uint8(1),
			"channel", "general",
			"clientId", uint16(12),
			"name", "nova",
			"message", "hello there",
		)},
		{PlayerWarp, codec.RecordOf("warpType", uint8(3), "rest", "CelestialWorld:1:2:3")},
		{ChatSent, codec.RecordOf("message", "/help", "sendMode", uint8(0))},
		{WorldStart, codec.RecordOf(
			"templateData", codec.ObjectVariant(
				codec.VariantField{Key: "size", Value: codec.ArrayVariant(codec.IntVariant(3000), codec.IntVariant(2000))},
				codec.VariantField{Key: "biome", Value: codec.StringVariant("forest")},
			),
			"skyData", []byte{0x01, 0x02},
			"weatherData", []byte{0x03},
			"spawn", codec.RecordOf("x", float32(1024.5), "y", float32(-16)),
			"respawnInWorld", true,
			"worldProperties", codec.NullVariant(),
			"clientId", uint16(7),
			"localInterpolation", true,
		)},
		{WorldStop, codec.RecordOf("reason", "removed")},
		{GiveItem, codec.RecordOf(
			"name", "copperbar",
			"count", uint64(250),
			"variantType", uint8(7),
			"description", "shiny",
		)},
	}
	for _, tc := range cases {
		t.Run(tc.msg.Name(), func(t *testing.T) {
			wire, err := tc.msg.Encode(tc.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			out, err := tc.msg.Decode(wire)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			assertRecordEqual(t, tc.in, out)
		})
	}
}

// UUID encode writes a presence flag that decode does not read, so
// messages carrying one are checked against the decode layout directly.
func TestConnectSuccessDecodesRawUUID(t *testing.T) {
	testlog.Start(t)
	wire := []byte{0x81, 0x00}
	wire = append(wire, bytes.Repeat([]byte{0xab}, 16)...)
	for _, v := range []uint32{1, 2, 32, 0xfffff000, 0x1000, 0xfffffffe, 0x10} {
		wire = append(wire, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	rec, err := ConnectSuccess.Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, _ := rec.Get("clientId"); id != uint64(128) {
		t.Fatalf("clientId: %v", id)
	}
	if u, _ := rec.Get("serverUuid"); u != hex.EncodeToString(bytes.Repeat([]byte{0xab}, 16)) {
		t.Fatalf("serverUuid: %v", u)
	}
	if v, _ := rec.Get("xyMin"); v != int32(-4096) {
		t.Fatalf("xyMin: %v", v)
	}
	if v, _ := rec.Get("zMin"); v != int32(-2) {
		t.Fatalf("zMin: %v", v)
	}
	if got := rec.Keys(); len(got) != 9 || got[0] != "clientId" || got[8] != "zMax" {
		t.Fatalf("unexpected key order: %v", got)
	}

	enc, err := ConnectSuccess.Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(enc) != len(wire)+1 || enc[2] != 0x01 {
		t.Fatalf("expected presence flag before uuid bytes, got %x", enc)
	}
}

func TestClientConnectDecode(t *testing.T) {
	testlog.Start(t)
	var wire []byte
	wire = append(wire, 0x02, 0xde, 0xad)
	wire = append(wire, bytes.Repeat([]byte{0x11}, 16)...)
	wire = append(wire, 0x04, 'n', 'o', 'v', 'a')
	wire = append(wire, 0x05, 'h', 'u', 'm', 'a', 'n')
	wire = append(wire, 0x01, 0x01, 'k', 0x00, 0x01, 'v')
	wire = append(wire, 0, 0, 0, 1)
	wire = append(wire, 0, 0, 0, 100)
	wire = append(wire, 0, 0, 0, 0)
	wire = append(wire, 0x01, 0x04, 'f', 'u', 'e', 'l')
	wire = append(wire, 0x01)
	wire = append(wire, 0x00)

	rec, err := ClientConnect.Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{
		"assetDigest", "uuid", "name", "species", "shipData", "shipLevel",
		"maxFuel", "unknown1", "shipUpgrades", "introComplete", "account",
	}
	got := rec.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: got=%s want=%s", i, got[i], want[i])
		}
	}
	ship, _ := rec.Get("shipData")
	table := ship.(codec.WorldChunks)
	if table.Count != 1 || string(table.Entries[0].Key) != "k" || string(table.Entries[0].Value) != "v" {
		t.Fatalf("shipData: %+v", table)
	}
	if fuel, _ := rec.Get("maxFuel"); fuel != uint32(100) {
		t.Fatalf("maxFuel: %v", fuel)
	}
	if account, _ := rec.Get("account"); account != "" {
		t.Fatalf("account: %v", account)
	}
}

func TestDecodeFailureReportsField(t *testing.T) {
	testlog.Start(t)
	_, err := ChatReceived.Decode([]byte{0x01, 0x02, 'g', 'e', 0x00})
	var fieldErr *codec.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Field != "clientId" {
		t.Fatalf("failing field: %s", fieldErr.Field)
	}
	if !errors.Is(err, codec.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestLookupAndByID(t *testing.T) {
	testlog.Start(t)
	if len(All()) != 13 {
		t.Fatalf("catalog size: %d", len(All()))
	}
	m, ok := Lookup("WorldStart")
	if !ok || m.ID != MsgWorldStart {
		t.Fatalf("lookup WorldStart: %+v %v", m, ok)
	}
	shared := ByID(11)
	if len(shared) != 2 || shared[0].Name() != "ClientDisconnectRequest" || shared[1].Name() != "ServerDisconnect" {
		t.Fatalf("ByID(11): %v", shared)
	}
	if len(ByID(200)) != 0 {
		t.Fatalf("expected no messages for id 200")
	}
	_, err := Decode("NoSuchPacket", []byte{})
	if !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
	_, err = Encode("NoSuchPacket", nil)
	if !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("expected ErrUnknownMessage, got %v", err)
	}
}

func assertRecordEqual(t *testing.T, want, got *codec.Record) {
	t.Helper()
	wk, gk := want.Keys(), got.Keys()
	if len(wk) != len(gk) {
		t.Fatalf("keys: got=%v want=%v", gk, wk)
	}
	for i := range wk {
		if wk[i] != gk[i] {
			t.Fatalf("key %d: got=%s want=%s", i, gk[i], wk[i])
		}
		wv, _ := want.Get(wk[i])
		gv, _ := got.Get(gk[i])
		if wr, ok := wv.(*codec.Record); ok {
			assertRecordEqual(t, wr, gv.(*codec.Record))
			continue
		}
		if !valuesEqual(wv, gv) {
			t.Fatalf("field %s: got=%#v want=%#v", wk[i], gv, wv)
		}
	}
}

func valuesEqual(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	av, aok := a.(codec.Variant)
	bv, bok := b.(codec.Variant)
	if aok || bok {
		ae, err1 := codec.EncodeValue(codec.VariantCodec, av)
		be, err2 := codec.EncodeValue(codec.VariantCodec, bv)
		return aok && bok && err1 == nil && err2 == nil && bytes.Equal(ae, be)
	}
	return a == b
}
