package metrics

// Core metrics
const (
	SchemaValidations          = "schema_validations"
	SchemaValidationErrors     = "schema_validation_errors"
	ConfigLoadMs               = "config_load_ms"
	ConfigLoadErrors           = "config_load_errors"
	PathfinderFindMs           = "pathfinder_find_ms"
	PathfinderValidationErrors = "pathfinder_validation_errors"
	PathfinderSecurityWarnings = "pathfinder_security_warnings"
	LoggingEmitCount           = "logging_emit_count"
	LoggingEmitLatencyMs       = "logging_emit_latency_ms"
	FulHashHashCount           = "fulhash_hash_count"
	FulHashErrorsCount         = "fulhash_errors_count"
)

// Schema cache metrics
const (
	SchemaCacheHitsTotal     = "schema_cache_hits_total"
	SchemaCacheMissesTotal   = "schema_cache_misses_total"
	SchemaCacheFetchMs       = "schema_cache_fetch_ms"
	SchemaCacheFetchErrors   = "schema_cache_fetch_errors_total"
	SchemaCompileMs          = "schema_compile_ms"
	SchemaCompileErrorsTotal = "schema_compile_errors_total"
)

// Validation result cache metrics
const (
	ValidationCacheHitsTotal   = "validation_cache_hits_total"
	ValidationCacheMissesTotal = "validation_cache_misses_total"
	ValidationCacheStoresTotal = "validation_cache_stores_total"
)

// Pipeline stage metrics
const (
	PipelineDiscoverMs       = "pipeline_discover_ms"
	PipelineResolveMs        = "pipeline_resolve_ms"
	PipelineGroupCount       = "pipeline_group_count"
	PipelineValidateMs       = "pipeline_validate_ms"
	PipelineFilesProcessed   = "pipeline_files_processed_total"
	PipelineDiagnosticsTotal = "pipeline_diagnostics_total"
)

// Catalog metrics
const (
	CatalogFetchMs          = "catalog_fetch_ms"
	CatalogFetchErrorsTotal = "catalog_fetch_errors_total"
	CatalogEntriesLoaded    = "catalog_entries_loaded"
)

// Error Handling Module Metrics
const (
	ErrorHandlingWrapsTotal = "error_handling_wraps_total"
	ErrorHandlingWrapMs     = "error_handling_wrap_ms"
)

// FulHash Module Metrics
const (
	FulHashOperationsTotalXXH3128 = "fulhash_operations_total_xxh3_128"
	FulHashOperationsTotalSHA256  = "fulhash_operations_total_sha256"
	FulHashHashStringTotal        = "fulhash_hash_string_total"
	FulHashBytesHashedTotal       = "fulhash_bytes_hashed_total"
	FulHashOperationMs            = "fulhash_operation_ms"
)

// Metric units
const (
	UnitCount   = "count"
	UnitMs      = "ms"
	UnitSeconds = "seconds"
	UnitBytes   = "bytes"
	UnitPercent = "percent"
)

// Standard tag keys
const (
	TagStatus    = "status"
	TagComponent = "component"
	TagOperation = "operation"
	TagCategory  = "category"
	TagVersion   = "version"
	TagSeverity  = "severity"
	TagLayer     = "layer"
	TagRoot      = "root"
	TagEndpoint  = "endpoint"
	TagHost      = "host"
	TagAlgorithm = "algorithm"
	TagErrorType = "error_type"
	TagPhase     = "phase"
	TagResult    = "result"
	TagReason    = "reason"
	TagPath      = "path"
	TagClient    = "client"
	TagSchemaURI = "schema_uri"
	TagParser    = "parser"
)

// Standard tag values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// Pipeline phase values
const (
	PhaseDiscover = "discover"
	PhaseResolve  = "resolve"
	PhaseFetch    = "fetch"
	PhaseCompile  = "compile"
	PhaseValidate = "validate"
)

// Result values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Error types
const (
	ErrorTypeValidation = "validation"
	ErrorTypeIO         = "io"
	ErrorTypeTimeout    = "timeout"
	ErrorTypeParse      = "parse"
	ErrorTypeOther      = "other"
)
