package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig    ErrorCode = "invalid_configuration"
	ErrBindFlags        ErrorCode = "bind_flags_failed"
	ErrReadConfig       ErrorCode = "read_config_failed"
	ErrInvalidInterval  ErrorCode = "invalid_interval"
	ErrInvalidThreshold ErrorCode = "invalid_threshold"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp      ErrorCode = "init_app_failed"
	ErrControlLoop  ErrorCode = "control_loop_failed"
	ErrSensorRead   ErrorCode = "sensor_read_failed"
	ErrActuatorSet  ErrorCode = "actuator_set_failed"
	ErrLinkClosed   ErrorCode = "link_closed"
	ErrLinkWrite    ErrorCode = "link_write_failed"
	ErrStatusFormat ErrorCode = "status_format_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Telemetry errors
	ErrInitTelemetry    ErrorCode = "init_telemetry_failed"
	ErrRecordTelemetry  ErrorCode = "record_telemetry_failed"
	ErrCloseTelemetry   ErrorCode = "close_telemetry_failed"

	// Publisher errors
	ErrPublishFailed  ErrorCode = "publish_failed"
	ErrBrokerConnect  ErrorCode = "broker_connect_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Service unavailable",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInvalidThreshold: "Invalid threshold value",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrInitApp:          "Failed to initialize application",
	ErrControlLoop:      "Error in control loop",
	ErrSensorRead:       "Failed to read sensor",
	ErrActuatorSet:      "Failed to drive actuator",
	ErrLinkClosed:       "Link closed",
	ErrLinkWrite:        "Failed to write to link",
	ErrStatusFormat:     "Failed to format status line",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrInvalidOperation: "Invalid operation",
	ErrInitTelemetry:    "Failed to initialize telemetry",
	ErrRecordTelemetry:  "Failed to record telemetry snapshot",
	ErrCloseTelemetry:   "Failed to close telemetry store",
	ErrPublishFailed:    "Failed to publish event",
	ErrBrokerConnect:    "Failed to connect to broker",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
