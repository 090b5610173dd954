package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// CounterDef defines a public type used by goAuthClient APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goAuthClient APIs.
type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricAuthorizeSuccess, Name: "oauthclient_authorize_success_total", Help: "Authorization round trips that yielded a code."},
	{ID: goAuthClient.MetricAuthorizeFailure, Name: "oauthclient_authorize_failure_total", Help: "Authorization round trips that failed."},
	{ID: goAuthClient.MetricAuthorizeCanceled, Name: "oauthclient_authorize_canceled_total", Help: "Authorization views closed by the user before the redirect."},
	{ID: goAuthClient.MetricRedirectParseFailure, Name: "oauthclient_redirect_parse_failure_total", Help: "Redirects that carried no authorization code."},
	{ID: goAuthClient.MetricTokenExchangeFailure, Name: "oauthclient_token_exchange_failure_total", Help: "Failed code-for-token exchanges."},
	{ID: goAuthClient.MetricPayloadDecodeFailure, Name: "oauthclient_payload_decode_failure_total", Help: "Token payloads that could not be decoded."},
	{ID: goAuthClient.MetricSessionStartFailure, Name: "oauthclient_session_start_failure_total", Help: "Local sessions that failed to start."},
	{ID: goAuthClient.MetricSessionStarted, Name: "oauthclient_session_started_total", Help: "Local sessions started."},
	{ID: goAuthClient.MetricProfileFetchFailure, Name: "oauthclient_profile_fetch_failure_total", Help: "Best-effort profile fetches that failed."},
	{ID: goAuthClient.MetricLoginTimeSuccess, Name: "oauthclient_login_time_success_total", Help: "Login-time updates accepted by the user service."},
	{ID: goAuthClient.MetricLoginTimeFailure, Name: "oauthclient_login_time_failure_total", Help: "Login-time updates that failed."},
	{ID: goAuthClient.MetricLogoutSuccess, Name: "oauthclient_logout_success_total", Help: "Completed logouts."},
	{ID: goAuthClient.MetricLogoutFailure, Name: "oauthclient_logout_failure_total", Help: "Failed logouts."},
	{ID: goAuthClient.MetricLogoutCanceled, Name: "oauthclient_logout_canceled_total", Help: "Logout views closed by the user before the redirect."},
	{ID: goAuthClient.MetricConfigUnresolved, Name: "oauthclient_config_unresolved_total", Help: "Flows rejected because endpoint configuration was unresolved."},
	{ID: goAuthClient.MetricFlowInProgress, Name: "oauthclient_flow_in_progress_total", Help: "Flows rejected because another view was open."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricTokenExchangeLatency, Name: "oauthclient_token_exchange_latency_seconds", Help: "Token exchange latency histogram."},
}

// AuditDroppedName is the counter reporting dropped audit events.
const AuditDroppedName = "oauthclient_audit_dropped_total"

// HistogramBounds are the upper bounds of the latency buckets as rendered
// in the le label.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix names the per-bucket instruments of exporters without
// native histogram observation.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// HistogramUpperBounds are HistogramBounds without the implicit +Inf bucket.
var HistogramUpperBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// NormalizeBuckets copies raw into a fixed-size bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
