package di

// Keys under which the bootstrap layer registers its services.
const (
	// Process container
	KeyCommunicationLogger = "communication_logger"
	KeyStatusCodeHandler   = "status_code_handler"
	KeyConfigRoot          = "config_root"
	KeySerializer          = "json_serializer"
	KeySerializerSettings  = "json_serializer_settings"
	KeyGlobalization       = "globalization"
	KeyMapper              = "mapper"
	KeyLogger              = "logger"

	// Request scope
	KeyRequestKey = "request_key"
	KeyCulture    = "culture"
)
