package schema

import "github.com/danmuck/starwire/internal/protocol/codec"

// SpawnCoordinates is the world spawn point nested in WorldStart.
var SpawnCoordinates = codec.Composite("SpawnCoordinates").
	Field("x", codec.BFloat32).
	Field("y", codec.BFloat32)

var (
	ProtocolRequest = define(MsgProtocolRequest, codec.Composite("ProtocolRequest").
		Field("clientBuild", codec.UBInt32))

	ProtocolResponse = define(MsgProtocolResponse, codec.Composite("ProtocolResponse").
		Field("serverResponse", codec.Byte))

	ClientConnect = define(MsgClientConnect, codec.Composite("ClientConnect").
		Field("assetDigest", codec.ByteArray).
		Field("uuid", codec.UUID).
		Field("name", codec.String).
		Field("species", codec.String).
		Field("shipData", codec.WorldChunksTable).
		Field("shipLevel", codec.UBInt32).
		Field("maxFuel", codec.UBInt32).
		Field("unknown1", codec.UBInt32).
		Field("shipUpgrades", codec.StringSet).
		Field("introComplete", codec.Byte).
		Field("account", codec.String))

	ConnectSuccess = define(MsgConnectSuccess, codec.Composite("ConnectSuccess").
		Field("clientId", codec.VLQ).
		Field("serverUuid", codec.UUID).
		Field("planetOrbitalLevels", codec.SBInt32).
		Field("satelliteOrbitalLevels", codec.SBInt32).
		Field("chunkSize", codec.SBInt32).
		Field("xyMin", codec.SBInt32).
		Field("xyMax", codec.SBInt32).
		Field("zMin", codec.SBInt32).
		Field("zMax", codec.SBInt32))

	ConnectFailure = define(MsgConnectFailure, codec.Composite("ConnectFailure").
		Field("reason", codec.String))

	ClientDisconnectRequest = define(MsgClientDisconnectRequest, codec.Composite("ClientDisconnectRequest").
		Field("request", codec.Byte))

	ServerDisconnect = define(MsgServerDisconnect, codec.Composite("ServerDisconnect").
		Field("reason", codec.String))

	ChatReceived = define(MsgChatReceived, codec.Composite("ChatReceived").
		Field("mode", codec.Byte).
		Field("channel", codec.String).
		Field("clientId", codec.UBInt16).
		Field("name", codec.String).
		Field("message", codec.String))

	PlayerWarp = define(MsgPlayerWarp, codec.Composite("PlayerWarp").
		Field("warpType", codec.Byte).
		Field("rest", codec.String))

	ChatSent = define(MsgChatSent, codec.Composite("ChatSent").
		Field("message", codec.String).
		Field("sendMode", codec.Byte))

	WorldStart = define(MsgWorldStart, codec.Composite("WorldStart").
		Field("templateData", codec.VariantCodec).
		Field("skyData", codec.ByteArray).
		Field("weatherData", codec.ByteArray).
		Field("spawn", SpawnCoordinates).
		Field("respawnInWorld", codec.Flag).
		Field("worldProperties", codec.VariantCodec).
		Field("clientId", codec.UBInt16).
		Field("localInterpolation", codec.Flag))

	WorldStop = define(MsgWorldStop, codec.Composite("WorldStop").
		Field("reason", codec.String))

	GiveItem = define(MsgGiveItem, codec.Composite("GiveItem").
		Field("name", codec.String).
		Field("count", codec.VLQ).
		Field("variantType", codec.Byte).
		Field("description", codec.String))
)

func define(id uint8, record *codec.Struct) Message {
	return Message{ID: id, Record: record}
}

var catalog = []Message{
	ProtocolRequest,
	ProtocolResponse,
	ClientConnect,
	ConnectSuccess,
	ConnectFailure,
	ClientDisconnectRequest,
	ServerDisconnect,
	ChatReceived,
	PlayerWarp,
	ChatSent,
	WorldStart,
	WorldStop,
	GiveItem,
}
