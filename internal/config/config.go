package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Anniversary-Cards/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Anniversary Cards"
	AppID             = "com.github.tartampluch.anniversary-cards"
	KeyringService    = "com.github.tartampluch.anniversary-cards"
	KeyringTokenUser  = "home-assistant"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "ANNIVERSARY_"
	EnvConfigPath     = "ANNIVERSARY_CONFIG"
	KoanfDelimiter    = "."
	KoanfTag          = "koanf"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagOnce         = "once"
	FlagStates       = "states"
	FlagSetPassword  = "set-password"
	FlagSetToken     = "set-token"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to a YAML configuration file"
	FlagDescOnce     = "Render every card once to stdout as JSON and exit"
	FlagDescStates   = "Read entities from a JSON state dump (file or Home Assistant /api/states URL) instead of vCards"
	FlagDescPassword = "Read the CardDAV password from stdin, store it in the OS keyring and exit"
	FlagDescToken    = "Read the Home Assistant access token from stdin, store it in the OS keyring and exit"
	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Host State Model
// -----------------------------------------------------------------------------

const (
	SensorPrefix     = "sensor."
	SummaryMarker    = "upcoming_anniversaries"
	StateUnavailable = "unavailable"

	AttrCategory          = "category"
	AttrNextDate          = "next_date"
	AttrCurrentYears      = "current_years"
	AttrYearsAtNext       = "years_at_anniversary"
	AttrIsMilestone       = "is_milestone"
	AttrZodiacSign        = "zodiac_sign"
	AttrBirthstone        = "birthstone"
	AttrBirthFlower       = "birth_flower"
	AttrGeneration        = "generation"
	AttrNamedAnniversary  = "named_anniversary"
	AttrCustomEmoji       = "custom_emoji"
	AttrFriendlyName      = "friendly_name"
	AttrDate              = "date"
	AttrWeeksRemaining    = "weeks_remaining"
	AttrHalfDate          = "half_anniversary_date"
	AttrDaysUntilHalf     = "days_until_half_anniversary"
	AttrUpcoming          = "upcoming"
	AttrUpcomingName      = "name"
	AttrUpcomingDays      = "days"
	AttrUpcomingNextDate  = "next_date"
	AttrUpcomingYears     = "years"
	AttrUpcomingEntityID  = "entity_id"
	SummaryStateNothing   = "Nothing"
	SummaryFriendlyName   = "Upcoming Anniversaries"
	SummaryEntityID       = SensorPrefix + "anniversary_" + SummaryMarker
	EntityIDPrefix        = SensorPrefix + "anniversary_"
	EntityIDAnnivSuffix   = "_anniversary"
	EntityIDCollisionFmt  = "%s_%d"
	SummaryUpcomingLength = 5
)

// -----------------------------------------------------------------------------
// Categories & Themes
// -----------------------------------------------------------------------------

const (
	CategoryBirthday    = "birthday"
	CategoryAnniversary = "anniversary"
	CategoryMemorial    = "memorial"
	CategoryHoliday     = "holiday"
	CategoryWork        = "work"
	CategoryAchievement = "achievement"
	CategoryEvent       = "event"
	CategoryOther       = "other"
)

// Day thresholds of the four colour buckets (inclusive).
const (
	BucketWeekMaxDays  = 7
	BucketMonthMaxDays = 30
)

// Universal colour scheme, used when category theming is off.
const (
	ColorDefault = "#FF9800"
	ColorToday   = "#F44336"
	ColorWeek    = "#FF9800"
	ColorMonth   = "#4CAF50"
	ColorFuture  = "#2196F3"

	// ColorTimelineFlat replaces ColorDefault on the general timeline.
	ColorTimelineFlat = "#1976d2"
)

// Icons resolved ahead of the category emoji.
const (
	IconToday     = "🌟"
	IconThisWeek  = "🔥"
	IconMilestone = "💎"
	IconGeneric   = "📅"
)

// Badge emoji.
const (
	EmojiZodiacFallback     = "⭐"
	EmojiBirthstoneFallback = "💍"
	EmojiBirthFlower        = "🌸"
	EmojiGeneration         = "👥"
	EmojiNamedAnniversary   = "💫"
	EmojiCurrentYears       = "📆"
	EmojiCategory           = "🏷️"
	EmojiDate               = "📅"
	EmojiWeeks              = "⏳"
	EmojiYearsAt            = "🎂"
	EmojiDefault            = "•"
	FormatBadge             = "%s %s"
	FormatBadgeYears        = "%s %d years"
)

// -----------------------------------------------------------------------------
// Card Types & Defaults
// -----------------------------------------------------------------------------

const (
	CardTimeline = "timeline"
	CardBirthday = "birthday"
	CardHoliday  = "holiday"
	CardStats    = "stats"
	CardCalendar = "calendar"
	CardDetails  = "details"

	TitleTimeline = "📅 Upcoming Anniversaries"
	TitleBirthday = "🎂 Upcoming Birthdays"
	TitleHoliday  = "🎉 Upcoming Holidays"
	TitleStats    = "📊 Anniversary Statistics"
	TitleCalendar = "📆 Anniversary Calendar"
	TitleDetails  = "Anniversary Details"

	DefaultMaxItems   = 5
	DefaultDateFormat = "long"
	DefaultLocale     = "en-US"
	StatsNextCount    = 3
	StatsTopZodiac    = 5

	// RenderDelay is the debounce window; zero defers to the next scheduler turn.
	RenderDelay = 0 * time.Millisecond
)

// Filter decision reasons exposed by the diagnostics view.
const (
	ReasonUnavailable     = "state unavailable"
	ReasonBadState        = "state not a non-negative integer"
	ReasonMissingAttr     = "missing attribute %s"
	ReasonMissingDescr    = "missing descriptive attribute"
	ReasonCategory        = "category filtered"
	ReasonTruncated       = "truncated"
	ReasonIncluded        = "included"
	ReasonNotFound        = "entity not found"
	PlaceholderNotFound   = "Entity not found"
	PlaceholderNoData     = "No data"
	PlaceholderNoUpcoming = "No upcoming anniversaries"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMonth        = "month_%d"
	TKeyMonthShort   = "month_short_%d"
	TKeyWeekday      = "weekday_%d" // 0 = Sunday
	TKeyWeekdayShort = "weekday_short_%d"
	TKeyWeekdayMin   = "weekday_min_%d"

	TKeyLayoutLong    = "layout_long"
	TKeyLayoutShort   = "layout_short"
	TKeyLayoutNumeric = "layout_numeric"
	TKeyLayoutFull    = "layout_full"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	SourceModeStates  = "states"
	DefaultPort       = "18080"
	DefaultRefreshMin = 60
	DefaultLogLevel   = "info"
	DefaultLeapYear   = 2000 // Leap year fallback for dates like --02-29
	UIDSalt           = "anniversary-cards-v1-"
	HalfYearMonths    = 6
	DaysPerWeek       = 7
	FallbackName      = "Unknown"
	FallbackCleanName = "unnamed"
	MilestoneEvery    = 10
	GenerationMinYear = 1901
)

// Milestones lists the year counts that are always milestones; any positive multiple
// of MilestoneEvery is one too.
var Milestones = []int{1, 5, 10, 18, 21, 25, 50, 75, 100}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Anniversary Cards//Feed//EN"
	ICalCalName   = "Anniversaries"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "anniversarycards"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardCategories  = "CATEGORIES"
	VCardFN          = "FN"
	VCardN           = "N"

	DefaultICalRefresh = 1 * time.Hour

	FormatDescription = "Happy %s anniversary!"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// DateLayoutBasicLong is the fixed en-US long layout of the first fallback tier.
	DateLayoutBasicLong = "January 2, 2006"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot     = "/{$}"
	RouteCalendar = "/calendar.ics"
	RouteCards    = "/api/cards"
	RouteCard     = "/api/cards/{id}"
	RouteWS       = "/ws"
	RouteMetrics  = "/metrics"
	PathValueID   = "id"

	// WebSocket tuning.
	WSSendBuffer   = 16
	WSWriteTimeout = 10 * time.Second
	WSPingInterval = 30 * time.Second
	WSReadLimit    = 4096
	WSMsgCardView  = "card_update"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderAuthorization   = "Authorization"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.5"
	MimeStates          = "application/json"
	BearerPrefix        = "Bearer "
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrStatesPathEmpty  = "configuration error: state dump path is empty"
	ErrSourceAuth       = "source rejected the credentials"
	ErrSourceStatus     = "source returned unexpected status"
	ErrSourceTooLarge   = "source response exceeds the size limit"
	ErrSourceRequest    = "failed to create source request"
	ErrSourceNetwork    = "network error during fetch"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrPatternEmpty     = "custom date format is empty"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLocaleIncomplete = "locale is missing a message"
	ErrStateDecode      = "failed to decode state dump"
	ErrStateShape       = "state dump must be a list or an object"
	ErrStateOpen        = "failed to open state dump"
	ErrConfigLoad       = "failed to load configuration"
	ErrConfigFile       = "failed to read configuration file"
	ErrConfigEnv        = "failed to read environment configuration"
	ErrLogLevel         = "unknown log level"
	ErrInvalidConfig    = "invalid configuration"
	ErrEntityRequired   = "you need to define an entity"
	ErrCardOptions      = "invalid card options"
	ErrCardType         = "unknown card type"
	ErrCardDuplicate    = "card type already registered"
	ErrCardIDDuplicate  = "card id already in use"
	ErrCardIDEmpty      = "card id is empty"
	ErrRenderEncode     = "failed to encode card view"
	ErrMetricsRegister  = "failed to register metrics"
	ErrWSAccept         = "websocket accept failed"
	ErrWSWrite          = "websocket write failed"
	ErrCardSetup        = "failed to set up card"
	ErrConfigWatch      = "failed to watch configuration file"
	ErrWebUserEmpty     = "configuration error: web user is empty"
	ErrPasswordRead     = "failed to read password from stdin"
	ErrPasswordStore    = "failed to store password in keyring"
	ErrTokenRead        = "failed to read access token from stdin"
	ErrTokenStore       = "failed to store access token in keyring"
	ErrTokenEmpty       = "access token is empty"
	ErrOnceEncode       = "failed to write card views"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgNotRendered  = "Card not rendered yet, please try again shortly."
	HTTPMsgCardNotFound = "Card not found"
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted    = "Synchronization started..."
	MsgSyncFinished   = "Sync finished"
	MsgSyncFailed     = "Synchronization failed"
	MsgSyncReq        = "Sync requested"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgUpdateSync     = "Updating sync interval"
	MsgAppStop        = "Application stopped gracefully"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgGenSuccess     = "Sensor generation successful"
	MsgFeedBuilt      = "Calendar feed built"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgTransMissing   = "Missing translation key"
	MsgDateFallback   = "Localized date render failed, using fallback"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgToday          = "Anniversary found today"
	MsgRenderDone     = "Card rendered"
	MsgRenderSkipped  = "Render skipped, card not ready"
	MsgCardRegistered = "Card registered"
	MsgPublishFailed  = "Publishing card view failed"
	MsgConfigLoaded   = "Configuration loaded"
	MsgWSConnected    = "WebSocket client connected"
	MsgWSClosed       = "WebSocket client disconnected"
	MsgWSDropped      = "WebSocket client too slow, message dropped"
	MsgStatesLoaded   = "State dump loaded"
	MsgConfigReloaded = "Configuration reloaded"
	MsgPasswordStored = "Password stored in keyring"
	MsgTokenStored    = "Access token stored in keyring"
	MsgTokenFail      = "Access token retrieval failed (might be empty)"
	MsgFetchStart     = "Downloading source"
	MsgFetchStatus    = "Source returned error status"
	MsgFetchBody      = "Source responded"
	MsgCardRestart    = "Card added or retyped, restart to apply"
	MsgCardRejected   = "Reloaded card options rejected, keeping previous"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"

	UnitDays    = "days"
	UnitHours   = "hours"
	UnitMinutes = "minutes"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace    = "anniversary_cards"
	MetricRenders       = "renders_total"
	MetricRenderSeconds = "render_duration_seconds"
	MetricRecords       = "records"
	MetricSyncs         = "syncs_total"
	MetricEntities      = "entities"
	MetricWSClients     = "websocket_clients"
	LabelCard           = "card"
	LabelType           = "type"
	LabelResult         = "result"
	ResultOK            = "ok"
	ResultError         = "error"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyFound     = "entities_found"
	LogKeyToday     = "anniversaries_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyDuration  = "duration_ms"
	LogKeyCard      = "card"
	LogKeyCardType  = "card_type"
	LogKeyEntity    = "entity_id"
	LogKeyRecords   = "records"
	LogKeyRemote    = "remote"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompApp     = "app"
	CompDateFmt = "datefmt"
	CompWidget  = "widget"
	CompSensor  = "sensor"
	CompFeed    = "feed"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompHub     = "websocket"
	CompMain    = "main"
	CompConfig  = "config"
)
